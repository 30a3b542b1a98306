package speech

import "fmt"

const summarySystemPrompt = `你是一個溫暖的長輩關懷小助手。
請將長輩的語音逐字稿轉化為晚輩易讀的摘要，並以「繁體中文」回傳 JSON。
格式包含：
- emotion: 情緒（例如：開心、擔心、平靜、寂寞）
- summary3: 三行重點清單
- quickReplies: 三個適合晚輩回覆長輩的溫馨短語`

func buildSummaryUserPrompt(transcript string) string {
	return fmt.Sprintf("這是長輩說的話：%s", transcript)
}
