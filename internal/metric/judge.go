package metric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/norvik-labs/promptctl/internal/llm"
)

const judgeScoreScale = 5

const judgePromptTemplate = `You are an expert evaluator. Assess the generated text based on the given criteria. Be deterministic and concise.

## Evaluation Criteria
{{.Criteria}}

{{if .Rubric}}
## Scoring Dimensions
{{range .Rubric}}- {{.}}
{{end}}
{{end}}
[BEGIN DATA]
[Source]: {{.Source}}
[Generated]: {{.Generated}}
{{if .Reference}}[Reference]: {{.Reference}}
{{end}}[END DATA]

## Instructions
Rate the generated text on a scale of 1-{{.ScoreScale}}.
- 1: Completely fails to meet criteria
- {{.ScoreScale}}: Perfectly meets all criteria

Output ONLY valid JSON in this exact format:
{"score": <integer 1-{{.ScoreScale}}>, "reasoning": "<brief explanation>"}`

var judgePromptTmpl = template.Must(template.New("judge").Parse(judgePromptTemplate))

type judgePromptData struct {
	Criteria   string
	Rubric     []string
	Source     string
	Generated  string
	Reference  string
	ScoreScale int
}

type judgeOutput struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// judgeMetric scores one dimension by asking an LLM grader for a likert
// rating and normalizing it into [0,1]. All four shipped metrics are
// instances of this one shape.
type judgeMetric struct {
	name     string
	criteria string
	rubric   []string
	provider llm.Provider
}

func (m *judgeMetric) Name() string {
	return m.name
}

func (m *judgeMetric) Evaluate(ctx context.Context, source, generated, reference string) (*Score, error) {
	if m == nil {
		return nil, errors.New("metric: nil metric")
	}
	if m.provider == nil {
		return nil, fmt.Errorf("metric: %s: nil llm provider", m.name)
	}
	if strings.TrimSpace(generated) == "" {
		return nil, fmt.Errorf("metric: %s: empty generated text", m.name)
	}

	var promptBuf bytes.Buffer
	if err := judgePromptTmpl.Execute(&promptBuf, judgePromptData{
		Criteria:   m.criteria,
		Rubric:     m.rubric,
		Source:     source,
		Generated:  generated,
		Reference:  reference,
		ScoreScale: judgeScoreScale,
	}); err != nil {
		return nil, fmt.Errorf("metric: %s: render prompt: %w", m.name, err)
	}

	resp, err := m.provider.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: promptBuf.String()}},
		MaxTokens: 512,
	})
	if err != nil {
		return nil, fmt.Errorf("metric: %s: judge: %w", m.name, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("metric: %s: nil judge response", m.name)
	}

	raw := strings.TrimSpace(resp.Text())
	out, err := decodeVerdict(raw)
	if err != nil {
		return &Score{
			Value:       0.0,
			Explanation: "invalid judge output",
			Details: map[string]any{
				"error":  err.Error(),
				"output": raw,
			},
		}, nil
	}

	if out.Score < 1 || out.Score > judgeScoreScale {
		return &Score{
			Value:       0.0,
			Explanation: "judge score out of range",
			Details: map[string]any{
				"score":       out.Score,
				"score_scale": judgeScoreScale,
				"output":      raw,
			},
		}, nil
	}

	value := Clamp(normalizeLikert(out.Score, judgeScoreScale))
	explanation := strings.TrimSpace(out.Reasoning)
	if explanation == "" {
		explanation = "no reasoning provided"
	}

	return &Score{
		Value:       value,
		Explanation: explanation,
		Details: map[string]any{
			"raw_score":   out.Score,
			"score_scale": judgeScoreScale,
		},
	}, nil
}

// decodeVerdict pulls the judge's {"score","reasoning"} object out of raw
// model output. Graders wrap the verdict in markdown fences or prose often
// enough that strict decoding would throw away usable scores.
func decodeVerdict(raw string) (judgeOutput, error) {
	var out judgeOutput

	s := strings.TrimSpace(raw)
	if s == "" {
		return out, errors.New("empty judge output")
	}
	if fenced, ok := strings.CutPrefix(s, "```"); ok {
		s = strings.TrimSpace(strings.TrimPrefix(fenced, "json"))
		if body, _, found := strings.Cut(s, "```"); found {
			s = strings.TrimSpace(body)
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return out, errors.New("no verdict object in judge output")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return out, fmt.Errorf("decode judge verdict: %w", err)
	}
	return out, nil
}

func normalizeLikert(score int, scale int) float64 {
	if scale <= 1 {
		return 0
	}
	if score <= 1 {
		return 0
	}
	if score >= scale {
		return 1
	}
	return float64(score-1) / float64(scale-1)
}
