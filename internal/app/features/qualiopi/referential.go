// internal/app/features/qualiopi/referential.go
package qualiopi

// Definition is one indicator of the national quality referential.
// Applicable is false for indicators that never concern a bilan de
// compétences provider (apprenticeship and certification specifics).
type Definition struct {
	Number     int    `json:"number"`
	Criterion  int    `json:"criterion"`
	Title      string `json:"title"`
	Applicable bool   `json:"applicable"`
}

// Criteria names the seven criteria by number.
var Criteria = map[int]string{
	1: "Information du public",
	2: "Identification des objectifs et adaptation",
	3: "Adaptation aux bénéficiaires",
	4: "Moyens pédagogiques, techniques et d'encadrement",
	5: "Qualification des personnels",
	6: "Environnement professionnel",
	7: "Appréciations et réclamations",
}

// Referential lists the 32 indicators in order.
var Referential = []Definition{
	{1, 1, "Information du public sur les prestations", true},
	{2, 1, "Indicateurs de résultats", true},
	{3, 1, "Obtention des certifications", false},
	{4, 2, "Analyse du besoin", true},
	{5, 2, "Objectifs de la prestation", true},
	{6, 2, "Contenus et modalités de mise en œuvre", true},
	{7, 2, "Adéquation aux exigences de la certification", false},
	{8, 2, "Positionnement à l'entrée", true},
	{9, 3, "Conditions de déroulement de la prestation", true},
	{10, 3, "Adaptation de la prestation", true},
	{11, 3, "Évaluation de l'atteinte des objectifs", true},
	{12, 3, "Engagement des bénéficiaires et prévention des ruptures", true},
	{13, 3, "Coordination des formations en alternance", false},
	{14, 3, "Exercice de la citoyenneté des apprentis", false},
	{15, 3, "Droits et devoirs de l'apprenti", false},
	{16, 3, "Présentation à la certification", false},
	{17, 4, "Moyens humains et techniques", true},
	{18, 4, "Coordination des intervenants", true},
	{19, 4, "Ressources pédagogiques", true},
	{20, 4, "Personnels dédiés à l'apprentissage", false},
	{21, 5, "Compétences des intervenants", true},
	{22, 5, "Développement des compétences des salariés", true},
	{23, 6, "Veille légale et réglementaire", true},
	{24, 6, "Veille sur les emplois et les métiers", true},
	{25, 6, "Veille sur les innovations pédagogiques et technologiques", true},
	{26, 6, "Accueil des personnes en situation de handicap", true},
	{27, 6, "Sous-traitance et portage salarial", true},
	{28, 6, "Réseau de partenaires socio-économiques", false},
	{29, 6, "Insertion professionnelle des apprentis", false},
	{30, 7, "Recueil des appréciations", true},
	{31, 7, "Traitement des réclamations", true},
	{32, 7, "Mesures d'amélioration continue", true},
}
