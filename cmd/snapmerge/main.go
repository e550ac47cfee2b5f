// Command snapmerge captures a webcam snapshot through an on-screen SHOOT
// button and merges it into template images wherever they are pure white.
package main

func main() {
	Execute()
}
