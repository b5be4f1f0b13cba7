// internal/app/system/advisor/advisor.go
package advisor

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/system/genai"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/qri-io/jsonschema"
)

// ErrMalformed is returned when the model output is not the expected JSON.
var ErrMalformed = errors.New("advisor: malformed model output")

//go:embed schemas/*.json
var schemaFS embed.FS

const systemPrompt = "Vous êtes un consultant expert en bilan de compétences. Répondez toujours en français."

// Advisor produces the AI-assisted parts of a bilan.
type Advisor interface {
	CareerAdvice(ctx context.Context, in CareerInput) (models.CareerAdvice, error)
	AnalyzeSkills(ctx context.Context, in SkillsInput) (models.SkillsAnalysis, error)
	ActionPlan(ctx context.Context, in ActionPlanInput) (models.ActionPlan, error)
	Synthesis(ctx context.Context, in SynthesisInput) (string, error)
}

// CareerInput describes the beneficiary's profile.
type CareerInput struct {
	Skills     []string
	Interests  []string
	Experience string
	Goals      string
}

// SkillsInput is a self-assessment, skill name to rating 1-5.
type SkillsInput struct {
	SelfAssessment map[string]int
	Background     string
	Achievements   []string
}

// ActionPlanInput frames the plan to build.
type ActionPlanInput struct {
	CurrentSituation string
	Goals            []string
	Constraints      []string
	Timeline         string
}

// SessionNote summarises one session for the synthesis prompt.
type SessionNote struct {
	Title string
	Date  string
	Notes string
}

// SynthesisInput gathers everything known about a bilan.
type SynthesisInput struct {
	BeneficiaryName string
	Objectives      string
	Skills          *models.SkillsAnalysis
	Recommendations []models.Recommendation
	Plan            *models.ActionPlan
	Sessions        []SessionNote
}

// Client implements Advisor on top of a genai.Generator.
type Client struct {
	gen     genai.Generator
	schemas map[string]*jsonschema.Schema
}

// New compiles the embedded response schemas and returns a Client.
func New(gen genai.Generator) (*Client, error) {
	if gen == nil {
		return nil, errors.New("advisor: generator is required")
	}
	c := &Client{gen: gen, schemas: make(map[string]*jsonschema.Schema)}
	for _, name := range []string{"career", "skills", "actionplan"} {
		b, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		c.schemas[name] = rs
	}
	return c, nil
}

// CareerAdvice asks for three to five occupations matching the profile.
func (c *Client) CareerAdvice(ctx context.Context, in CareerInput) (models.CareerAdvice, error) {
	prompt := fmt.Sprintf(`En tant qu'expert en orientation professionnelle, analysez le profil suivant et générez des recommandations de carrière personnalisées en français :

Compétences actuelles : %s
Centres d'intérêt : %s
Expérience professionnelle : %s
Objectifs de carrière : %s

Générez une réponse structurée au format JSON avec :
1. Un tableau "recommendations" contenant 3-5 recommandations de métiers avec :
   - title : nom du métier
   - description : description détaillée (2-3 phrases)
   - matchScore : score de correspondance (entier 0-100)
   - requiredSkills : compétences requises (tableau)
   - trainingNeeded : formations recommandées (tableau)
2. Un champ "summary" avec une synthèse générale (2-3 paragraphes)

Répondez UNIQUEMENT avec du JSON valide, sans markdown ni texte supplémentaire.`,
		strings.Join(in.Skills, ", "), strings.Join(in.Interests, ", "), in.Experience, in.Goals)

	var out models.CareerAdvice
	err := c.generateJSON(ctx, "career", prompt, &out)
	return out, err
}

// AnalyzeSkills turns a self-assessment into strengths, gaps and paths.
func (c *Client) AnalyzeSkills(ctx context.Context, in SkillsInput) (models.SkillsAnalysis, error) {
	names := make([]string, 0, len(in.SelfAssessment))
	for name := range in.SelfAssessment {
		names = append(names, name)
	}
	sort.Strings(names)
	var lines strings.Builder
	for _, name := range names {
		fmt.Fprintf(&lines, "%s: %d/5\n", name, in.SelfAssessment[name])
	}

	prompt := fmt.Sprintf(`En tant qu'expert en développement professionnel, analysez cette auto-évaluation de compétences :

Auto-évaluation :
%s
Parcours professionnel : %s
Réalisations : %s

Générez une analyse structurée au format JSON avec :
1. "strengths" : tableau des points forts identifiés (3-5 items)
2. "areasForImprovement" : tableau des axes d'amélioration (3-5 items)
3. "developmentPlan" : plan de développement détaillé (texte, 2-3 paragraphes)
4. "careerPaths" : tableau de pistes de carrière possibles (3-5 items)

Répondez UNIQUEMENT avec du JSON valide, sans markdown ni texte supplémentaire.`,
		lines.String(), in.Background, strings.Join(in.Achievements, ", "))

	var out models.SkillsAnalysis
	err := c.generateJSON(ctx, "skills", prompt, &out)
	return out, err
}

// ActionPlan builds short, medium and long term actions.
func (c *Client) ActionPlan(ctx context.Context, in ActionPlanInput) (models.ActionPlan, error) {
	prompt := fmt.Sprintf(`En tant qu'expert en accompagnement professionnel, créez un plan d'action personnalisé :

Situation actuelle : %s
Objectifs : %s
Contraintes : %s
Horizon temporel : %s

Générez un plan d'action structuré au format JSON avec :
1. "shortTermActions" : actions à court terme (0-3 mois), tableau d'objets avec action, deadline, priority (HIGH, MEDIUM ou LOW)
2. "mediumTermActions" : actions à moyen terme (3-12 mois), même format
3. "longTermActions" : actions à long terme (12+ mois), même format
4. "keyMilestones" : jalons clés à atteindre (tableau de chaînes)
5. "resources" : ressources nécessaires (formations, contacts, outils), tableau de chaînes

Répondez UNIQUEMENT avec du JSON valide, sans markdown ni texte supplémentaire.`,
		in.CurrentSituation, strings.Join(in.Goals, ", "), strings.Join(in.Constraints, ", "), in.Timeline)

	var out models.ActionPlan
	err := c.generateJSON(ctx, "actionplan", prompt, &out)
	return out, err
}

// Synthesis writes the markdown synthesis document.
func (c *Client) Synthesis(ctx context.Context, in SynthesisInput) (string, error) {
	var sessions strings.Builder
	for _, s := range in.Sessions {
		fmt.Fprintf(&sessions, "- %s (%s)", s.Title, s.Date)
		if s.Notes != "" {
			sessions.WriteString(": " + s.Notes)
		}
		sessions.WriteString("\n")
	}

	prompt := fmt.Sprintf(`En tant qu'expert en bilan de compétences, rédigez une synthèse professionnelle complète pour :

Bénéficiaire : %s
Objectifs du bilan : %s

Évaluation des compétences : %s
Recommandations : %s
Plan d'action : %s

Sessions réalisées :
%s
Rédigez une synthèse professionnelle structurée en markdown avec :
1. Introduction et contexte
2. Analyse des compétences et points forts
3. Axes de développement identifiés
4. Recommandations de carrière
5. Plan d'action détaillé
6. Conclusion et perspectives

La synthèse doit être professionnelle, encourageante et orientée action.`,
		in.BeneficiaryName, in.Objectives, indent(in.Skills), indent(in.Recommendations), indent(in.Plan), sessions.String())

	text, err := c.gen.Generate(ctx, genai.Prompt{System: systemPrompt, User: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generateJSON(ctx context.Context, schema, prompt string, out any) error {
	text, err := c.gen.Generate(ctx, genai.Prompt{System: systemPrompt, User: prompt, JSON: true})
	if err != nil {
		return err
	}
	body := []byte(StripFences(text))

	verrs, err := c.schemas[schema].ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, v := range verrs {
			msgs = append(msgs, v.PropertyPath+" "+v.Message)
		}
		return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func indent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(b)
}
