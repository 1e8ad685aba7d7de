package icon

// Icon identifies a UI symbol in the registry.
type Icon int

const (
	Lua Icon = iota + 1
	Fail
	Success
	Progress
	Mark
	Link
	Search
	Play
	Pause
	Mute
	Volume
	Cast
)

var icons = map[Icon]*iconDef{
	Lua: {
		emoji:   "🌙",
		nerd:    "\ue620",
		plain:   "Lua",
		kaomoji: "(=^･ω･^=)",
		squares: "◧",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "\uf00d",
		plain:   "X",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "\uf00c",
		plain:   "Success",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "\uf110",
		plain:   "...",
		kaomoji: "┐(･｡･┐) ♪",
		squares: "🟦",
	},
	Mark: {
		emoji:   "🔖",
		nerd:    "\uf02e",
		plain:   "*",
		kaomoji: "★",
		squares: "🟨",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "\uf0c1",
		plain:   "->",
		kaomoji: "→",
		squares: "◩",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "\uf002",
		plain:   "?",
		kaomoji: "(・_・ヾ",
		squares: "◪",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "\uf04b",
		plain:   ">",
		kaomoji: "ヽ(>∀<☆)ノ",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "\uf04c",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⏸",
	},
	Mute: {
		emoji:   "🔇",
		nerd:    "\uf026",
		plain:   "muted",
		kaomoji: "(ㆆ_ㆆ)",
		squares: "◻",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "\uf028",
		plain:   "vol",
		kaomoji: "♪♪",
		squares: "◼",
	},
	Cast: {
		emoji:   "📺",
		nerd:    "\U000f0118",
		plain:   "cast",
		kaomoji: "[▓▓]",
		squares: "▣",
	},
}
