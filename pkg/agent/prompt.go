package agent

import (
	"fmt"
	"strings"

	// Packages
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DefaultSystemPrompt is the prompt for answering questions from the database
	DefaultSystemPrompt = "你是一个数据库查询助手, 【20240315_外特性_1】表是数据库中存储外特性数据的表"

	// The number of tools described in a tool prompt
	promptTools = 10
)

const toolPrompt = `你是一个智能助手，可以通过调用以下工具来帮助用户完成任务：

可用工具：
%s

请根据用户的自然语言请求，判断是否需要调用工具。如果需要，请正确使用工具并返回结果。
如果不需要调用工具，就直接回答用户的问题。

重要提示：
- 仔细阅读每个工具的描述和参数要求
- 确保传递正确的参数类型和格式
- 如果工具调用失败，请向用户说明原因`

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ToolPrompt returns a system prompt which describes the first ten tools
// and asks the model to decide when to call them
func ToolPrompt(tools []tool.Tool) string {
	lines := make([]string, 0, min(len(tools), promptTools)+1)
	for i, t := range tools {
		if i == promptTools {
			lines = append(lines, fmt.Sprintf("... 还有 %d 个工具", len(tools)-promptTools))
			break
		}
		description := strings.TrimSpace(t.Description())
		if description == "" {
			description = "无描述"
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, t.Name(), description))
	}
	return fmt.Sprintf(toolPrompt, strings.Join(lines, "\n"))
}
