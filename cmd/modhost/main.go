// Command modhost replays a scripted host session against the built-in
// modules. It stands in for a real host application when trying out
// modules, settings files and the dispatch rules.
package main

func main() {
	Execute()
}
