package graph

import "strings"

// MermaidDiagram renders the graph topology as Mermaid flowchart text.
// The topology is static per configuration, so this mirrors what BuildGraph
// composes rather than introspecting the compiled runnable.
func MermaidDiagram(searchEnabled bool) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString("    start([start]) --> context_loader[ContextLoader]\n")
	b.WriteString("    context_loader --> chat_model[ChatModel]\n")
	if searchEnabled {
		b.WriteString("    chat_model -->|tool calls| tools[ToolExecutor]\n")
		b.WriteString("    tools --> chat_model\n")
		b.WriteString("    chat_model -->|no tool calls| finish([end])\n")
	} else {
		b.WriteString("    chat_model --> finish([end])\n")
	}
	return b.String()
}
