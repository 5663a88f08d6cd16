package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ModalConfig holds overlay box configuration.
type ModalConfig struct {
	// WidthPercent is the overlay width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum overlay width in characters.
	MinWidth int

	// MaxWidth is the maximum overlay width in characters.
	MaxWidth int

	// ContentPadding is subtracted from the overlay width for row rendering.
	// Accounts for border (2) and horizontal padding (2).
	ContentPadding int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	SearchCharLimit int
	NameCharLimit   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Modal: ModalConfig{
			WidthPercent:   60,
			MinWidth:       40,
			MaxWidth:       100,
			ContentPadding: 4,
		},
		Input: InputConfig{
			SearchCharLimit: 200,
			NameCharLimit:   80,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
