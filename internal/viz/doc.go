// Package viz provides a live terminal view of momentum scrubbing.
//
// The view is a Bubble Tea program whose tick message is the display refresh:
// every tick steps a [frame.Manual] driver one frame, which in turn ticks the
// active coasting session.
//
// # Key Bindings
//
//	Left/H, Right/L - Fling left or right
//	Up/K, Down/J    - Raise or lower the fling speed
//	Space           - Stop the coast where it is
//	T               - Toggle a resting touch
//	R               - Recenter
//	Q               - Quit
package viz
