// Package viz renders N-body runs in the terminal.
//
// [Model] is a Bubble Tea program that advances a simulator a few
// adaptive steps per frame and draws the bodies and their trails on a
// braille [Canvas] through a rotatable [Camera]. [Menu] picks a preset
// and its run parameters before handing over to the live view.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial state
//	+/-   - Zoom
//	x/y/z - Rotate the camera (shift reverses)
//	./,   - More or fewer steps per frame
//	T     - Cycle color themes
//	G     - Start/stop GIF recording
//	?     - Help overlay
package viz
