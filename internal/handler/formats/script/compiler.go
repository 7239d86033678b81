// Package script implements internal handlers written as YAML documents of
// expr expressions.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/chook-lab/chook/internal/handler"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"
)

// Name is the format name shown in handler listings.
const Name = "script"

var marker = regexp.MustCompile(`(?m)^event_handler:\s*$`)

// Compiler compiles script handler files.
type Compiler struct {
	logger *slog.Logger
}

// NewCompiler creates a script compiler. Script log() calls go to logger.
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{logger: logger}
}

func (c *Compiler) Name() string { return Name }

func (c *Compiler) Marker() *regexp.Regexp { return marker }

// Compile parses the document and compiles every expression once.
func (c *Compiler) Compile(_ context.Context, path string, content []byte, register func(handler.Callable)) error {
	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid script: %w", err)
	}

	opts := []expr.Option{expr.Env(newEnv(handler.Input{}, &run{}))}

	p := &program{path: path, logger: c.logger}
	if doc.EventHandler.When != "" {
		when, err := expr.Compile(doc.EventHandler.When, append(opts, expr.AsBool())...)
		if err != nil {
			return fmt.Errorf("when: %w", err)
		}
		p.when = when
	}
	for i, src := range doc.EventHandler.Do {
		step, err := expr.Compile(src, opts...)
		if err != nil {
			return fmt.Errorf("do[%d]: %w", i, err)
		}
		p.steps = append(p.steps, step)
	}

	register(p.call)
	return nil
}

type program struct {
	path   string
	logger *slog.Logger
	when   *vm.Program
	steps  []*vm.Program
}

// run is the per-invocation state the script functions write to.
type run struct {
	logger  *slog.Logger
	failure error
}

func (p *program) call(ctx context.Context, in handler.Input) error {
	logger := p.logger.With("handler", p.path)
	if in.Event != nil {
		logger = logger.With("event_id", in.Event.ID())
	}
	r := &run{logger: logger}
	env := newEnv(in, r)

	if p.when != nil {
		out, err := expr.Run(p.when, env)
		if err != nil {
			return fmt.Errorf("when: %w", err)
		}
		if ok, _ := out.(bool); !ok {
			logger.Debug("Script condition false, skipping")
			return nil
		}
	}

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := expr.Run(step, env); err != nil {
			return fmt.Errorf("do[%d]: %w", i, err)
		}
		if r.failure != nil {
			return r.failure
		}
	}
	return nil
}

func newEnv(in handler.Input, r *run) map[string]any {
	ev := map[string]any{}
	webhook := map[string]any{}
	subject := map[string]any{}
	if in.Event != nil {
		ev["id"] = in.Event.ID()
		ev["type"] = in.Event.Type()
		ev["subjectKind"] = in.Event.SubjectKind()
		webhook["id"] = in.Event.WebhookID()
		webhook["name"] = in.Event.WebhookName()
		subject = map[string]any(in.Event.Subject())
	}

	var payload any
	if len(in.Payload) > 0 {
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			payload = nil
		}
	}

	return map[string]any{
		"event":   ev,
		"webhook": webhook,
		"subject": subject,
		"payload": payload,
		"raw":     string(in.Payload),
		"sprintf": fmt.Sprintf,
		"log": func(level, msg string) bool {
			if r.logger != nil {
				r.logger.Log(context.Background(), parseLevel(level), msg)
			}
			return true
		},
		"fail": func(msg string) bool {
			r.failure = errors.New(msg)
			return false
		},
	}
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
