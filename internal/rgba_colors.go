package internal

import (
	"image/color"
)

// semi-transparent fills so overlapping histograms stay readable
var colors = []color.RGBA{
	{R: 135, G: 206, B: 235, A: 128}, // SkyBlue
	{R: 244, G: 164, B: 96, A: 128},  // SandyBrown
	{R: 60, G: 179, B: 113, A: 128},  // MediumSeaGreen
	{R: 147, G: 112, B: 219, A: 128}, // MediumPurple
	{R: 255, G: 105, B: 180, A: 128}, // HotPink
	{R: 32, G: 178, B: 170, A: 128},  // LightSeaGreen
	{R: 100, G: 149, B: 237, A: 128}, // CornflowerBlue
	{R: 210, G: 105, B: 30, A: 128},  // Chocolate
	{R: 255, G: 99, B: 71, A: 128},   // Tomato
	{R: 64, G: 224, B: 208, A: 128},  // Turquoise
}
