package colors

// package colors contains functions to quickly generate boneoverlay.Color instances by name (i.e. "White()", "Blue()", "Green()", etc),
// plus the palette the overlay uses for its default marker, line, and label colors.

import "github.com/solarlune/boneoverlay"

// Transparent generates a boneoverlay.Color instance of the provided name.
func Transparent() boneoverlay.Color {
	return boneoverlay.NewColor(0, 0, 0, 0)
}

// White generates a boneoverlay.Color instance of the provided name.
func White() boneoverlay.Color {
	return boneoverlay.NewColor(1, 1, 1, 1)
}

// Black generates a boneoverlay.Color instance of the provided name.
func Black() boneoverlay.Color {
	return boneoverlay.NewColor(0, 0, 0, 1)
}

// Gray generates a boneoverlay.Color instance of the provided name.
func Gray() boneoverlay.Color {
	return boneoverlay.NewColor(0.5, 0.5, 0.5, 1)
}

// LightGray generates a boneoverlay.Color instance of the provided name.
func LightGray() boneoverlay.Color {
	return boneoverlay.NewColor(0.8, 0.8, 0.8, 1)
}

// DarkGray generates a boneoverlay.Color instance of the provided name.
func DarkGray() boneoverlay.Color {
	return boneoverlay.NewColor(0.2, 0.2, 0.2, 1)
}

// DarkestGray generates a boneoverlay.Color instance of the provided name.
func DarkestGray() boneoverlay.Color {
	return boneoverlay.NewColor(0.05, 0.05, 0.05, 1)
}

// Yellow generates a boneoverlay.Color instance of the provided name.
func Yellow() boneoverlay.Color {
	return boneoverlay.NewColor(1, 1, 0, 1)
}

// Green generates a boneoverlay.Color instance of the provided name.
func Green() boneoverlay.Color {
	return boneoverlay.NewColor(0, 1, 0, 1)
}

// Periwinkle is the soft blue used for unselected bone markers.
func Periwinkle() boneoverlay.Color {
	return boneoverlay.NewColor(0.5, 0.5, 1, 0.8)
}

// Indigo is the translucent blue used for bone connection lines.
func Indigo() boneoverlay.Color {
	return boneoverlay.NewColor(0.3, 0.3, 0.8, 0.5)
}

// SkyBlue is the color used for bone labels.
func SkyBlue() boneoverlay.Color {
	return boneoverlay.NewColor(0.4, 0.7, 1, 1)
}
