// Planctl inspects a project's plan store from the command line.
//
// It is the operator-side companion to the planward MCP server: list
// and show plans, classify commands, find stalled executions, and read
// the execution history, all without going through an AI session.
package main

func main() {
	Execute()
}
