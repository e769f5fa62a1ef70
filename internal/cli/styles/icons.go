package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconVersion   = "" // tag
	IconGitBranch = "" // git branch
	IconCalendar  = "" // calendar
	IconGithub    = "" // github
	IconHeart     = "" // heart
	IconGo        = "" // go gopher
	IconArrow     = "" // arrow right

	IconCheck   = ""
	IconX       = ""
	IconWarning = ""
	IconInfo    = ""

	IconConfig   = ""
	IconDatabase = ""
	IconFolder   = ""
	IconCursor   = "" // chevron-right

	IconMagic  = "" // wand, enhancements
	IconPrompt = "" // terminal, injected prompts
	IconClock  = ""
	IconPlay   = ""
)
