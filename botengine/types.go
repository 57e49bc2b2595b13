package botengine

import "github.com/recruiterhub/wabot/domains/contact"

// Limits applied to model output before it reaches the channel.
const (
	ReplyMaxLen        = 500
	MemoryUpdateMaxLen = 2000
	RecentExchangeMax  = 12
)

// RecoveryStage is assigned when every model candidate fails; it steers
// the next prompt back to the basic qualification question.
const RecoveryStage = "ask_country_job"

// FallbackReply is sent when every model candidate fails.
const FallbackReply = "Понял. Напиши, пожалуйста: страна и какая работа интересует (например: Германия, склад)."

// DefaultModels is the ordered fallback list tried on each call. An env
// override model, when configured, is tried before all of these.
var DefaultModels = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.5-flash-001",
	"gemini-pro",
}

// Exchange is one line of recent dialog fed back into the prompt.
type Exchange struct {
	Inbound bool
	Text    string
}

// Memory is the conversation context carried into a generation call.
type Memory struct {
	Summary string
	Recent  []Exchange
}

// GenerateRequest carries everything the model needs for one reply.
type GenerateRequest struct {
	SystemPrompt string
	UserText     string
	Memory       Memory
	Stage        string
}

// GenerateResult is the validated, constrained model output. Generate
// always produces a usable result; on total model failure the fallback
// constants above fill it in.
type GenerateResult struct {
	Reply        string
	NextStage    string
	LeadType     contact.LeadType
	NeedLink     bool
	Stop         bool
	MemoryUpdate string
}

func fallbackResult() GenerateResult {
	return GenerateResult{
		Reply:     FallbackReply,
		NextStage: RecoveryStage,
		LeadType:  contact.LeadUnknown,
	}
}
