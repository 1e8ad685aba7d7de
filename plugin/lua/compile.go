package lua

import (
	"bytes"
	"crypto/sha256"
	"sync"

	"github.com/vplay-cli/vplay/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// protos caches compiled scripts by content hash, so every player built from the same
// file shares one prototype.
var protos sync.Map

func compile(path string) (*lua.FunctionProto, error) {
	source, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(source)
	if cached, ok := protos.Load(sum); ok {
		return cached.(*lua.FunctionProto), nil
	}

	chunk, err := parse.Parse(bytes.NewReader(source), path)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	protos.Store(sum, proto)
	return proto, nil
}

func run(L *lua.LState, proto *lua.FunctionProto) error {
	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}
