package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"scene-editor/internal/llm"
)

// DefaultModel is used when the model getter returns "".
const DefaultModel = "gpt-4o-mini"

var fence = regexp.MustCompile("^```\\w*\\n?")

// Handler applies one action. Payload is the action object (e.g. {"action":"group", "names":[...]}).
// Returns an error to report to the user; the agent still processes the remaining actions.
type Handler func(payload map[string]any) error

// Action is one parsed step of an LLM reply.
type Action struct {
	Name    string
	Payload map[string]any
}

// Poster runs fn on the thread that owns the scene graph.
type Poster interface {
	Post(fn func())
}

// Agent turns natural language into scene edits via an LLM and a registry of action
// handlers. Plan talks to the LLM and may run on any goroutine; Apply touches the graph
// and must run on the UI thread.
type Agent struct {
	client   llm.Client
	getModel func() string
	handlers map[string]Handler
	log      *slog.Logger
}

// New returns an Agent that uses the given LLM client and model getter.
// Register handlers with RegisterHandler before calling Plan.
func New(client llm.Client, getModel func() string, log *slog.Logger) *Agent {
	if log == nil {
		log = slog.Default()
	}
	return &Agent{
		client:   client,
		getModel: getModel,
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// RegisterHandler adds a handler for the given action name (e.g. "add_object", "run_cmd").
func (a *Agent) RegisterHandler(name string, h Handler) {
	a.handlers[name] = h
}

// Plan sends the request to the LLM and parses its reply into actions. viewContext
// describes the scene as the user sees it and may be empty.
func (a *Agent) Plan(ctx context.Context, request, viewContext string) ([]Action, error) {
	return a.plan(ctx, a.model(), request, viewContext)
}

func (a *Agent) model() string {
	model := ""
	if a.getModel != nil {
		model = a.getModel()
	}
	if model == "" {
		model = DefaultModel
	}
	return model
}

func (a *Agent) plan(ctx context.Context, model, request, viewContext string) ([]Action, error) {
	msg := request
	if viewContext != "" {
		msg = "Scene:\n" + viewContext + "\n\nRequest: " + request
	}
	reply, err := a.client.Complete(ctx, model, systemPrompt(a.actionNames()), msg)
	if err != nil {
		return nil, err
	}
	actions, err := parseActions(reply)
	if err != nil {
		return nil, fmt.Errorf("LLM response invalid: %w", err)
	}
	return actions, nil
}

// Apply runs each action's handler in order. It returns a short summary for the
// terminal and the joined handler errors.
func (a *Agent) Apply(actions []Action) (string, error) {
	var applied int
	var errs []error
	for i, act := range actions {
		h, ok := a.handlers[act.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("action %d: unknown action %q", i+1, act.Name))
			continue
		}
		if err := h(act.Payload); err != nil {
			errs = append(errs, fmt.Errorf("action %d (%s): %w", i+1, act.Name, err))
			continue
		}
		applied++
	}
	summary := fmt.Sprintf("applied %d of %d action(s)", applied, len(actions))
	if err := errors.Join(errs...); err != nil {
		a.log.Info("agent actions failed", "applied", applied, "total", len(actions), "err", err)
		return summary, err
	}
	return summary, nil
}

// Submit plans on a new goroutine and posts Apply to p. done, if set, runs on p's thread
// with the summary and any error. The model is read before the goroutine starts, so
// getModel only ever runs on the caller's thread.
func (a *Agent) Submit(ctx context.Context, p Poster, request, viewContext string, done func(summary string, err error)) {
	model := a.model()
	go func() {
		actions, err := a.plan(ctx, model, request, viewContext)
		p.Post(func() {
			if err != nil {
				if done != nil {
					done("", err)
				}
				return
			}
			summary, err := a.Apply(actions)
			if done != nil {
				done(summary, err)
			}
		})
	}()
}

func (a *Agent) actionNames() []string {
	names := make([]string, 0, len(a.handlers))
	for name := range a.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func systemPrompt(names []string) string {
	var b strings.Builder
	b.WriteString(`You edit a 3D scene. Reply with ONLY a JSON object, no prose:
{"actions":[{"action":"<name>", ...}]}
Positions are [x,y,z] world coordinates; y is up. Colors are [r,g,b] in 0..1.
Actions:
- add_object: {"shape":"cube|sphere|cylinder|plane","name":"...","position":[x,y,z],"scale":[x,y,z],"color":[r,g,b]}
- add_objects: {"shape":"...","count":N,"pattern":"grid|line|random","spacing":2,"origin":[x,y,z],"scale":[x,y,z]}
- delete_object: {"name":"..."}
- move_object: {"name":"...","position":[x,y,z]}
- select: {"names":["..."],"add":false}
- group: {"names":["..."],"name":"..."}; without names, groups the current selection
- ungroup: {"name":"..."}; without name, ungroups the selected group
- run_cmd: {"args":["mode","rotate"]} runs an editor command
Refer to objects by the names given in the scene description.`)
	if len(names) > 0 {
		b.WriteString("\nAvailable here: ")
		b.WriteString(strings.Join(names, ", "))
	}
	return b.String()
}

// parseActions pulls the first JSON object out of reply and returns its actions. The
// object may carry an "actions" array, a single "actions" object, or be one action.
func parseActions(reply string) ([]Action, error) {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = fence.ReplaceAllString(reply, "")
		reply = strings.TrimSpace(strings.TrimSuffix(reply, "```"))
	}
	obj, err := firstObject(reply)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, err
	}
	var items []any
	switch v := raw["actions"].(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		if _, ok := raw["action"]; !ok {
			return nil, fmt.Errorf(`missing actions (reply had no "actions" or "action")`)
		}
		items = []any{raw}
	}
	out := make([]Action, 0, len(items))
	for i, item := range items {
		payload, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("action %d: not an object", i+1)
		}
		name, _ := payload["action"].(string)
		if name == "" {
			return nil, fmt.Errorf("action %d: missing \"action\" name", i+1)
		}
		out = append(out, Action{Name: name, Payload: payload})
	}
	return out, nil
}

// firstObject returns the first balanced {...} in s, skipping braces inside strings.
func firstObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON braces")
}
