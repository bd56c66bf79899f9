package agent

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"stockpulse/internal/adapters/ai"
	"stockpulse/internal/adapters/config"
	"stockpulse/internal/domain/conversation"
	"stockpulse/internal/metrics"
	"stockpulse/internal/tools"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Locker serializes turns per user. Acquire returns false when a turn
// for the same user is already in flight.
type Locker interface {
	Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID string) error
}

// Orchestrator runs the think-act loop for a single inbound message:
// load state, let the model call tools, persist, reply.
type Orchestrator struct {
	provider ai.ChatProvider
	registry *tools.Registry
	convos   *conversation.Service
	locker   Locker
	aiCfg    config.AIConfig
	cfg      config.AgentConfig
	catalog  []ai.ToolDefinition
	log      *logger.Logger
}

// NewOrchestrator wires the agent loop to its provider, tool catalog,
// conversation store and per-user turn locker.
func NewOrchestrator(
	provider ai.ChatProvider,
	registry *tools.Registry,
	convos *conversation.Service,
	locker Locker,
	aiCfg config.AIConfig,
	cfg config.AgentConfig,
) *Orchestrator {
	defs := registry.Definitions()
	catalog := make([]ai.ToolDefinition, 0, len(defs)+1)
	for _, def := range defs {
		catalog = append(catalog, ai.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	catalog = append(catalog, memoryToolDefinition())

	return &Orchestrator{
		provider: provider,
		registry: registry,
		convos:   convos,
		locker:   locker,
		aiCfg:    aiCfg,
		cfg:      cfg,
		catalog:  catalog,
		log:      logger.Get().With("component", "orchestrator"),
	}
}

// ProcessTurn handles one inbound user message end to end and returns
// the reply text. The error return is reserved for persistence
// failures; capability failures produce an apologetic reply instead.
func (o *Orchestrator) ProcessTurn(ctx context.Context, userID, text string) (string, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, o.cfg.TurnTimeout)
	defer cancel()

	acquired, err := o.locker.Acquire(ctx, userID, o.cfg.LockTTL)
	if err != nil {
		// A broken lock store should not take the whole agent down
		o.log.Warnw("Turn lock unavailable, proceeding unlocked", "user_id", userID, "error", err)
	} else if !acquired {
		metrics.TurnsTotal.WithLabelValues("busy").Inc()
		return busyReply, nil
	} else {
		defer func() {
			if releaseErr := o.locker.Release(context.WithoutCancel(ctx), userID); releaseErr != nil {
				o.log.Warnw("Failed to release turn lock", "user_id", userID, "error", releaseErr)
			}
		}()
	}

	state, err := o.convos.Load(ctx, userID)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("persist_error").Inc()
		return "", errors.Wrap(err, "load conversation")
	}

	state.Append(conversation.RoleUser, text)
	state.Truncate(o.convos.Window())

	reply, capErr := o.runLoop(ctx, userID, state)
	if capErr != nil {
		// The inbound message is still persisted so the user can
		// retry without repeating themselves
		o.log.Errorw("Turn failed, replying with fallback", "user_id", userID, "error", capErr)
		metrics.TurnsTotal.WithLabelValues("capability_error").Inc()
		reply = fallbackReply
	}

	state.Append(conversation.RoleAssistant, reply)
	if err := o.convos.Save(ctx, state); err != nil {
		metrics.TurnsTotal.WithLabelValues("persist_error").Inc()
		return "", errors.Wrap(err, "persist conversation")
	}

	if capErr == nil {
		metrics.TurnsTotal.WithLabelValues("ok").Inc()
	}
	metrics.TurnDuration.Observe(time.Since(started).Seconds())
	return reply, nil
}

// chat calls the provider with one retry on failure. A second failure
// is returned to the caller to degrade from.
func (o *Orchestrator) chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	resp, err := o.provider.Chat(ctx, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	o.log.Warnw("Chat completion failed, retrying", "error", err)
	return o.provider.Chat(ctx, req)
}

// runLoop drives the bounded tool-calling loop. Tool request and result
// messages live only inside the loop; the persisted history keeps the
// plain user and assistant text.
func (o *Orchestrator) runLoop(ctx context.Context, userID string, state *conversation.State) (string, error) {
	messages := o.seedMessages(state)

	for step := 0; step < o.cfg.MaxToolSteps; step++ {
		resp, err := o.chat(ctx, ai.ChatRequest{
			Model:       o.aiCfg.Model,
			Messages:    messages,
			Tools:       o.catalog,
			Temperature: o.aiCfg.Temperature,
		})
		if err != nil {
			return "", errors.Wrap(err, "chat completion")
		}

		if len(resp.Message.ToolCalls) == 0 {
			if resp.Message.Content == "" {
				return "", errors.New("model returned an empty reply")
			}
			return resp.Message.Content, nil
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			var result map[string]interface{}
			if call.Name == memoryToolName {
				result = o.updateMemory(state, call)
			} else {
				result = o.executeCall(ctx, userID, call)
			}
			payload, err := json.Marshal(result)
			if err != nil {
				return "", errors.Wrap(err, "encode tool result")
			}
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
			})
		}
	}

	o.log.Warnw("Tool step limit reached", "user_id", userID, "limit", o.cfg.MaxToolSteps)

	// Out of tool budget. One last call without tools forces the model
	// to answer from whatever it has gathered so far.
	resp, err := o.chat(ctx, ai.ChatRequest{
		Model:       o.aiCfg.Model,
		Messages:    messages,
		Temperature: o.aiCfg.Temperature,
	})
	if err != nil || resp.Message.Content == "" {
		return stepLimitReply, nil
	}
	return resp.Message.Content, nil
}

// executeCall runs one tool invocation. Every failure mode comes back
// as a structured result so the model can explain it to the user.
func (o *Orchestrator) executeCall(ctx context.Context, userID string, call ai.ToolCall) map[string]interface{} {
	tool, ok := o.registry.Get(call.Name)
	if !ok {
		o.log.Warnw("Model requested unknown tool", "tool", call.Name, "user_id", userID)
		metrics.ToolExecutions.WithLabelValues(call.Name, "unknown").Inc()
		return map[string]interface{}{
			"error":   tools.FailureInvalidArguments,
			"message": "unknown tool " + call.Name,
		}
	}

	var args map[string]interface{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			metrics.ToolExecutions.WithLabelValues(call.Name, "invalid_args").Inc()
			return map[string]interface{}{
				"error":   tools.FailureInvalidArguments,
				"message": "arguments are not valid JSON",
			}
		}
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := tool.Execute(ctx, userID, args)
	if err != nil {
		o.log.Warnw("Tool execution failed",
			"tool", call.Name, "user_id", userID, "error", err)
		metrics.ToolExecutions.WithLabelValues(call.Name, "error").Inc()
		return tools.FailureResult(err)
	}

	metrics.ToolExecutions.WithLabelValues(call.Name, "ok").Inc()
	return result
}

// memoryToolName is the built-in note tool, handled by the orchestrator
// itself because it mutates the conversation state of the current turn.
const memoryToolName = "remember"

func memoryToolDefinition() ai.ToolDefinition {
	return ai.ToolDefinition{
		Name:        memoryToolName,
		Description: "Save a short durable note about the user, like a preference or recurring context, to recall in future conversations. Sending an empty value removes the note.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Short snake_case label for the note",
				},
				"value": map[string]interface{}{
					"type":        "string",
					"description": "The note text. Empty removes the note.",
				},
			},
			"required": []string{"key"},
		},
	}
}

// updateMemory writes a note into the turn's working memory. The state
// is persisted at the end of the turn, so notes survive across turns.
func (o *Orchestrator) updateMemory(state *conversation.State, call ai.ToolCall) map[string]interface{} {
	var args struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || strings.TrimSpace(args.Key) == "" {
		metrics.ToolExecutions.WithLabelValues(memoryToolName, "invalid_args").Inc()
		return map[string]interface{}{
			"error":   tools.FailureInvalidArguments,
			"message": "remember needs a non-empty key",
		}
	}

	key := strings.TrimSpace(args.Key)
	if state.WorkingMemory == nil {
		state.WorkingMemory = conversation.Memory{}
	}
	metrics.ToolExecutions.WithLabelValues(memoryToolName, "ok").Inc()
	if args.Value == "" {
		delete(state.WorkingMemory, key)
		return map[string]interface{}{"forgotten": key}
	}
	state.WorkingMemory[key] = args.Value
	return map[string]interface{}{"remembered": key}
}

// seedMessages builds the provider message list from persisted history.
// Saved notes ride along in the system prompt so the model can use them
// without a lookup.
func (o *Orchestrator) seedMessages(state *conversation.State) []ai.Message {
	system := systemPrompt
	if len(state.WorkingMemory) > 0 {
		keys := make([]string, 0, len(state.WorkingMemory))
		for k := range state.WorkingMemory {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString(system)
		b.WriteString("\n\nNotes you saved about this user in earlier conversations:")
		for _, k := range keys {
			b.WriteString("\n- ")
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(state.WorkingMemory[k])
		}
		system = b.String()
	}

	messages := make([]ai.Message, 0, len(state.History)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: system})
	for _, m := range state.History {
		role := ai.RoleUser
		if m.Role == conversation.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: m.Content})
	}
	return messages
}

// GenerateSummary produces the scheduled daily update text for a user.
// The summary tool runs directly rather than at the model's discretion,
// so the update always reflects real data. An empty string means the
// user has nothing to report and no message should be sent.
func (o *Orchestrator) GenerateSummary(ctx context.Context, userID string) (string, error) {
	tool, ok := o.registry.Get("get_summary")
	if !ok {
		return "", errors.New("summary tool is not registered")
	}

	result, err := tool.Execute(ctx, userID, map[string]interface{}{})
	if err != nil {
		return "", errors.Wrap(err, "build summary")
	}
	if empty, _ := result["empty"].(bool); empty {
		return "", nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", errors.Wrap(err, "encode summary")
	}

	resp, err := o.chat(ctx, ai.ChatRequest{
		Model: o.aiCfg.Model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: summaryPrompt},
			{Role: ai.RoleUser, Content: string(payload)},
		},
		Temperature: o.aiCfg.Temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "format summary")
	}
	if resp.Message.Content == "" {
		return "", errors.New("model returned an empty summary")
	}
	return resp.Message.Content, nil
}
