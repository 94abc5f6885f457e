// Command playdeck plays a playlist or a looping background track from the
// terminal without a UI.
package main

func main() {
	Execute()
}
