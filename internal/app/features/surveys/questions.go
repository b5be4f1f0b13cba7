// internal/app/features/surveys/questions.go
package surveys

import "github.com/dalemusser/bilanhub/internal/domain/models"

// DefaultTitle and DefaultQuestions are used when a survey is created
// without its own questionnaire.
const DefaultTitle = "Questionnaire de satisfaction"

var DefaultQuestions = []models.SurveyQuestion{
	{Key: "accueil", Label: "Qualité de l'accueil et de l'information préalable", Kind: models.QuestionRating},
	{Key: "accompagnement", Label: "Qualité de l'accompagnement par le consultant", Kind: models.QuestionRating},
	{Key: "outils", Label: "Pertinence des outils et tests proposés", Kind: models.QuestionRating},
	{Key: "objectifs", Label: "Atteinte de vos objectifs", Kind: models.QuestionRating},
	{Key: "recommandation", Label: "Recommanderiez-vous ce bilan à un proche ?", Kind: models.QuestionRating},
	{Key: "commentaire", Label: "Vos remarques et suggestions", Kind: models.QuestionText},
}
