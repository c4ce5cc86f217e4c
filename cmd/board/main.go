// Command board is the thin CLI surface (§1: out of scope as a UX
// deliverable, present here only as the pipelines' driver) over the task
// lifecycle engine: create, attach, delete, move, list, archive, gc,
// doctor, and serve.
package main

func main() {
	Execute()
}
