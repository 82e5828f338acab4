package illuminate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ardenvale/illuminator-go/internal/bulkop"
	"github.com/ardenvale/illuminator-go/internal/config"
	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/store"
)

// Flat accounting cost for one generated illustration.
const imageCost = 0.04

// Service builds the dispatcher for each bulk operation kind. Every dispatch
// loads the record, runs the model with the kind's resolved call config, and
// persists the result.
type Service struct {
	client     Client
	st         *store.Store
	defaults   CallConfig
	imageModel string
}

// Operation pairs a bulk operation kind with its display label and dispatcher.
type Operation struct {
	Kind     string
	Label    string
	Dispatch bulkop.DispatchFunc
}

// NewService wires a model client and store into a dispatcher factory.
func NewService(client Client, st *store.Store, cfg *config.Config) *Service {
	return &Service{
		client:     client,
		st:         st,
		defaults:   DefaultsFromConfig(cfg),
		imageModel: cfg.LLM.ImageModel,
	}
}

// kindOverrides layer on top of the global defaults; a dispatcher may layer
// one more per-call override on top of these.
var kindOverrides = map[string]CallConfig{
	"entity-describe": {
		System: "You are the illuminator of a simulated world. Write a vivid, concrete description of the entity you are given. Two paragraphs at most.",
	},
	"backport": {
		System: "You are the illuminator of a simulated world. Rewrite the given description so it fits an earlier era of the world, preserving every established fact.",
	},
	"annotate": {
		System: "You are a sceptical historian reviewing chronicles of a simulated world. Reply with two lines: 'Anchor: <short exact quote from the text>' and 'Note: <your margin note>'.",
	},
	"tone-rewrite": {
		System: "You are the illuminator of a simulated world. Rewrite the passage in the requested tone without adding or removing events.",
	},
	"cohesion": {
		Temperature: ptr(0.0),
		System:      "You check chronicles of a simulated world for internal contradictions. If the text is consistent reply 'CONSISTENT'. Otherwise reply with one line per problem, each starting with 'INCONSISTENT:'.",
	},
}

func ptr(f float64) *float64 { return &f }

func (s *Service) callConfig(kind string, overrides ...CallConfig) CallConfig {
	layered := append([]CallConfig{kindOverrides[kind]}, overrides...)
	return Resolve(s.defaults, layered...)
}

// Operations returns every bulk operation kind this service can drive, in
// the order the workspace lists them.
func (s *Service) Operations() []Operation {
	return []Operation{
		{Kind: "entity-describe", Label: "Describe Entities", Dispatch: s.dispatchDescribe},
		{Kind: "backport", Label: "Bulk Backport", Dispatch: s.dispatchBackport},
		{Kind: "annotate", Label: "Historian Annotation", Dispatch: s.dispatchAnnotate},
		{Kind: "tone-rewrite", Label: "Tone Rewrite", Dispatch: s.dispatchToneRewrite},
		{Kind: "cohesion", Label: "Cohesion Validation", Dispatch: s.dispatchCohesion},
		{Kind: "imagegen", Label: "Generate Illustrations", Dispatch: s.dispatchImage},
	}
}

func (s *Service) dispatchDescribe(ctx context.Context, item models.WorkItem) (*bulkop.ItemResult, error) {
	if item.Kind != models.WorkItemEntity {
		return nil, fmt.Errorf("describe expects entities, got %s", item.Kind)
	}
	e, err := s.st.GetEntity(item.ID)
	if err != nil {
		return nil, fmt.Errorf("entity %d not found: %w", item.ID, err)
	}

	tone := SuggestTone(e.Era, e.Tone)
	completion, err := s.client.Complete(ctx, Call{
		Prompt: fmt.Sprintf("Entity: %s\nKind: %s\nEra: %s\nTone: %s", e.Name, e.Kind, e.Era, tone),
		Config: s.callConfig("entity-describe"),
	})
	if err != nil {
		return nil, err
	}
	if err := s.st.UpdateEntityDescription(e.ID, completion.Text, tone); err != nil {
		return nil, fmt.Errorf("could not save description: %w", err)
	}
	return &bulkop.ItemResult{Output: completion.Text, Cost: completion.Cost}, nil
}

func (s *Service) dispatchBackport(ctx context.Context, item models.WorkItem) (*bulkop.ItemResult, error) {
	if item.Kind != models.WorkItemEntity {
		return nil, fmt.Errorf("backport expects entities, got %s", item.Kind)
	}
	e, err := s.st.GetEntity(item.ID)
	if err != nil {
		return nil, fmt.Errorf("entity %d not found: %w", item.ID, err)
	}
	if e.Description == "" {
		return nil, fmt.Errorf("entity %q has no description to backport", e.Name)
	}

	completion, err := s.client.Complete(ctx, Call{
		Prompt: fmt.Sprintf("Era to target: before %s\n\n%s", e.Era, e.Description),
		Config: s.callConfig("backport"),
	})
	if err != nil {
		return nil, err
	}
	if err := s.st.MarkEntityBackported(e.ID, completion.Text); err != nil {
		return nil, fmt.Errorf("could not save backported description: %w", err)
	}
	return &bulkop.ItemResult{Output: completion.Text, Cost: completion.Cost}, nil
}

// dispatchAnnotate handles the interleaved run: chronicle items get a margin
// note anchored into their text, entity items get the historian's aside woven
// into their description.
func (s *Service) dispatchAnnotate(ctx context.Context, item models.WorkItem) (*bulkop.ItemResult, error) {
	switch item.Kind {
	case models.WorkItemChronicle:
		return s.annotateChronicle(ctx, item.ID)
	case models.WorkItemEntity:
		return s.annotateEntity(ctx, item.ID)
	default:
		return nil, fmt.Errorf("unknown work item kind %q", item.Kind)
	}
}

func (s *Service) annotateChronicle(ctx context.Context, id int64) (*bulkop.ItemResult, error) {
	c, err := s.st.GetChronicle(id)
	if err != nil {
		return nil, fmt.Errorf("chronicle %d not found: %w", id, err)
	}

	completion, err := s.client.Complete(ctx, Call{
		Prompt: fmt.Sprintf("Chronicle %q:\n\n%s", c.Title, c.Body),
		Config: s.callConfig("annotate"),
	})
	if err != nil {
		return nil, err
	}

	anchor, note := parseAnnotation(completion.Text)
	if note == "" {
		return nil, fmt.Errorf("model response had no usable note")
	}
	offset, ok := FindAnchor(c.Body, anchor)
	if !ok {
		// The quote didn't survive contact with the text; pin the note to
		// the start of the chronicle instead of losing it.
		anchor, offset = wordPrefix(c.Body, 8), 0
	}
	if _, err := s.st.InsertAnnotation(c.ID, anchor, offset, note); err != nil {
		return nil, fmt.Errorf("could not save annotation: %w", err)
	}
	return &bulkop.ItemResult{Output: note, Cost: completion.Cost}, nil
}

func (s *Service) annotateEntity(ctx context.Context, id int64) (*bulkop.ItemResult, error) {
	e, err := s.st.GetEntity(id)
	if err != nil {
		return nil, fmt.Errorf("entity %d not found: %w", id, err)
	}

	completion, err := s.client.Complete(ctx, Call{
		Prompt: fmt.Sprintf("Entity %q (%s, %s):\n\n%s", e.Name, e.Kind, e.Era, e.Description),
		Config: s.callConfig("annotate", CallConfig{
			System: "You are a sceptical historian. Rewrite the entity description, weaving one short historian's aside into it. Return only the rewritten description.",
		}),
	})
	if err != nil {
		return nil, err
	}
	if err := s.st.UpdateEntityDescription(e.ID, completion.Text, e.Tone); err != nil {
		return nil, fmt.Errorf("could not save annotated description: %w", err)
	}
	return &bulkop.ItemResult{Output: completion.Text, Cost: completion.Cost}, nil
}

func (s *Service) dispatchToneRewrite(ctx context.Context, item models.WorkItem) (*bulkop.ItemResult, error) {
	if item.Kind != models.WorkItemChronicle {
		return nil, fmt.Errorf("tone rewrite expects chronicles, got %s", item.Kind)
	}
	c, err := s.st.GetChronicle(item.ID)
	if err != nil {
		return nil, fmt.Errorf("chronicle %d not found: %w", item.ID, err)
	}

	tone := SuggestTone(c.Era, "")
	completion, err := s.client.Complete(ctx, Call{
		Prompt: fmt.Sprintf("Tone: %s\n\n%s", tone, c.Body),
		Config: s.callConfig("tone-rewrite"),
	})
	if err != nil {
		return nil, err
	}
	if err := s.st.UpdateChronicleTone(c.ID, tone, completion.Text); err != nil {
		return nil, fmt.Errorf("could not save rewritten chronicle: %w", err)
	}
	return &bulkop.ItemResult{Output: completion.Text, Cost: completion.Cost}, nil
}

func (s *Service) dispatchCohesion(ctx context.Context, item models.WorkItem) (*bulkop.ItemResult, error) {
	if item.Kind != models.WorkItemChronicle {
		return nil, fmt.Errorf("cohesion validation expects chronicles, got %s", item.Kind)
	}
	c, err := s.st.GetChronicle(item.ID)
	if err != nil {
		return nil, fmt.Errorf("chronicle %d not found: %w", item.ID, err)
	}

	completion, err := s.client.Complete(ctx, Call{
		Prompt: fmt.Sprintf("Chronicle %q:\n\n%s", c.Title, c.Body),
		Config: s.callConfig("cohesion"),
	})
	if err != nil {
		return nil, err
	}

	flagged, recorded := 0, 0
	for _, line := range strings.Split(completion.Text, "\n") {
		line = strings.TrimSpace(line)
		detail, ok := strings.CutPrefix(line, "INCONSISTENT:")
		if !ok {
			continue
		}
		flagged++
		inserted, err := s.st.RecordCohesionIssue(c.ID, c.Title, strings.TrimSpace(detail))
		if err != nil {
			return nil, fmt.Errorf("could not record cohesion issue: %w", err)
		}
		if inserted {
			recorded++
		}
	}

	output := "consistent"
	if flagged > 0 {
		output = fmt.Sprintf("%d issues recorded", recorded)
	}
	return &bulkop.ItemResult{Output: output, Cost: completion.Cost}, nil
}

func (s *Service) dispatchImage(ctx context.Context, item models.WorkItem) (*bulkop.ItemResult, error) {
	if item.Kind != models.WorkItemEntity {
		return nil, fmt.Errorf("illustration expects entities, got %s", item.Kind)
	}
	e, err := s.st.GetEntity(item.ID)
	if err != nil {
		return nil, fmt.Errorf("entity %d not found: %w", item.ID, err)
	}

	prompt := fmt.Sprintf("An illustration of %s, a %s from the era %q.", e.Name, e.Kind, e.Era)
	if e.Description != "" {
		prompt += " " + firstWords(e.Description, 40)
	}

	data, err := s.client.GenerateImage(ctx, s.imageModel, prompt)
	if err != nil {
		return nil, err
	}
	thumb, err := Thumbnail(data)
	if err != nil {
		return nil, fmt.Errorf("could not build thumbnail: %w", err)
	}
	if _, err := s.st.InsertGeneratedImage(e.ID, prompt, thumb); err != nil {
		return nil, fmt.Errorf("could not save illustration: %w", err)
	}
	return &bulkop.ItemResult{Output: prompt, Cost: imageCost}, nil
}

// parseAnnotation splits the historian model's two-line reply.
func parseAnnotation(text string) (anchor, note string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Anchor:"); ok {
			anchor = strings.Trim(strings.TrimSpace(v), `"`)
		} else if v, ok := strings.CutPrefix(line, "Note:"); ok {
			note = strings.TrimSpace(v)
		}
	}
	return anchor, note
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// wordPrefix returns the prefix of s spanning its first n words with the
// original spacing intact, so the result is an exact substring of s at
// offset 0. Anchors stored against a chronicle must slice from its body.
func wordPrefix(s string, n int) string {
	words := 0
	inWord := false
	for i, r := range s {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case !inWord:
			inWord = true
			words++
			if words > n {
				return strings.TrimRightFunc(s[:i], unicode.IsSpace)
			}
		}
	}
	return s
}
