package chat

// QuestionsLeadIn opens every clarifying-questions reply.
const QuestionsLeadIn = "To refine your idea, I have a few questions:"

const questionsPrompt = `You help founders sharpen a raw business idea before any documents are written.
Ask 3 to 5 clarifying questions about the idea.

Format rules:
- Begin your reply with exactly: "` + QuestionsLeadIn + `"
- Follow with a numbered list, one question per line.
- No greeting, no closing remarks, no commentary.`

const gatheringPrompt = `You help founders sharpen a business idea. Acknowledge what the user just told you in one sentence, then ask at most two follow-up questions about whatever is still unclear: target users, the problem, how it makes money, or what makes it different. Keep it short.`

const summaryPrompt = `You turn a founder conversation into the canonical idea summary used by every later document.
Use everything the user said, including revisions; later statements override earlier ones.

Write Markdown using exactly this template:
# Idea Summary: <product name>
## 1. Problem
## 2. Target Users
## 3. Solution
## 4. Key Features
## 5. Business Model
## 6. Competitive Landscape
## 7. Differentiation
## 8. Success Metrics

Each section is two to five sentences or bullets. Do not ask questions.`

const postSummaryPrompt = `The idea summary for this project is final. Answer the user's message helpfully and briefly, using the summary and conversation as context. Do not rewrite the summary.`

// SystemPrompt returns the system prompt for stage.
func SystemPrompt(stage Stage) string {
	switch stage {
	case StageQuestions, StageInitial:
		return questionsPrompt
	case StageSummary:
		return summaryPrompt
	case StagePostSummary:
		return postSummaryPrompt
	default:
		return gatheringPrompt
	}
}
