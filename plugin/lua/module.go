package lua

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the name scripts require to reach the player.
const ModuleName = "player"

func (p *Plugin) module(L *lua.LState) int {
	control := func(f func() *mo.Future[float64]) lua.LGFunction {
		return func(L *lua.LState) int {
			return push(L, f())
		}
	}
	number := func(f func(float64) *mo.Future[float64]) lua.LGFunction {
		return func(L *lua.LState) int {
			return push(L, f(float64(L.CheckNumber(1))))
		}
	}
	flag := func(f func() bool) lua.LGFunction {
		return func(L *lua.LState) int {
			L.Push(lua.LBool(f()))
			return 1
		}
	}

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"play":         control(p.core.Play),
		"pause":        control(p.core.Pause),
		"mute":         control(p.core.Mute),
		"unmute":       control(p.core.Unmute),
		"current_time": control(p.core.CurrentTime),
		"duration":     control(p.core.Duration),
		"seek":         number(p.core.Seek),
		"set_volume":   number(p.core.SetVolume),
		"paused":       flag(p.core.Paused),
		"muted":        flag(p.core.Muted),
		"loading":      flag(p.core.Loading),
		"on":           p.luaOn,
		"emit":         p.luaEmit,
		"log":          p.luaLog,
	})
	mod.RawSetString("id", lua.LString(p.core.ID()))
	mod.RawSetString("kind", lua.LString(p.core.Kind()))
	mod.RawSetString("type", lua.LString(p.core.Type()))

	L.Push(mod)
	return 1
}

// push settles f and returns (value) or (nil, message) to Lua.
func push(L *lua.LState, f *mo.Future[float64]) int {
	v, err := f.Collect()
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(v))
	return 1
}

// luaOn subscribes fn to an event and returns a function that unsubscribes it.
func (p *Plugin) luaOn(L *lua.LState) int {
	t := event.Type(L.CheckString(1))
	fn := L.CheckFunction(2)
	if !t.Valid() {
		L.ArgError(1, fmt.Sprintf("unknown event %q", t))
		return 0
	}

	id := p.core.On(t, func(e event.Event) {
		p.queue.push(func() {
			p.callback(fn, payload(e))
		})
	})
	var once sync.Once
	off := func() {
		once.Do(func() { p.core.Off(t, id) })
	}
	p.listeners = append(p.listeners, off)

	L.Push(L.NewFunction(func(*lua.LState) int {
		off()
		return 0
	}))
	return 1
}

func (p *Plugin) luaEmit(L *lua.LState) int {
	t := event.Type(L.CheckString(1))
	if err := p.core.Dispatch(t, fromLua(L.Get(2))); err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	return 0
}

func (p *Plugin) luaLog(L *lua.LState) int {
	log.Infof("lua: %s: %s", p.name, L.CheckString(1))
	return 0
}

// payload flattens the known event payloads into plain maps.
func payload(e event.Event) any {
	switch v := e.Payload.(type) {
	case event.TimePayload:
		return map[string]any{"current_time": v.CurrentTime, "duration": v.Duration}
	case event.VolumePayload:
		return map[string]any{"volume": v.Volume, "muted": v.Muted}
	case event.TrackPayload:
		return map[string]any{"language": v.Language}
	case error:
		return v.Error()
	default:
		return v
	}
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case []any:
		t := L.NewTable()
		for _, item := range v {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, v[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case *lua.LTable:
		if v.MaxN() > 0 {
			list := make([]any, 0, v.MaxN())
			for i := 1; i <= v.MaxN(); i++ {
				list = append(list, fromLua(v.RawGetInt(i)))
			}
			return list
		}
		m := make(map[string]any)
		v.ForEach(func(k, item lua.LValue) {
			m[k.String()] = fromLua(item)
		})
		return m
	default:
		return nil
	}
}
