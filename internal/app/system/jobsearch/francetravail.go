// internal/app/system/jobsearch/francetravail.go
package jobsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// France Travail partner API endpoints.
const (
	DefaultTokenURL = "https://entreprise.francetravail.fr/connexion/oauth2/access_token?realm=%2Fpartenaire"
	DefaultAPIURL   = "https://api.francetravail.io/partenaire/offresdemploi/v2"
)

var offerScopes = []string{"api_offresdemploiv2", "o2dsoffre"}

// FranceTravailConfig configures NewFranceTravail.
type FranceTravailConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
	Timeout      time.Duration
}

// FranceTravail searches live offers through the France Travail partner API
// and answers every other lookup from the embedded catalog.
type FranceTravail struct {
	*Catalog
	http   *http.Client
	apiURL string
}

// NewFranceTravail builds a client that authenticates with OAuth2 client
// credentials. The token is fetched lazily and cached by the oauth2 transport.
func NewFranceTravail(ctx context.Context, cfg FranceTravailConfig, catalog *Catalog) *FranceTravail {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       offerScopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	base := &http.Client{Timeout: cfg.Timeout}
	hc := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	hc.Timeout = cfg.Timeout
	return &FranceTravail{Catalog: catalog, http: hc, apiURL: strings.TrimRight(cfg.APIURL, "/")}
}

// contract type to the API's typeContrat / natureContrat parameters
var contractParams = map[string][2]string{
	ContractCDI:         {"typeContrat", "CDI"},
	ContractCDD:         {"typeContrat", "CDD"},
	ContractInterim:     {"typeContrat", "MIS"},
	ContractIndependant: {"typeContrat", "LIB"},
	ContractAlternance:  {"natureContrat", "E2"},
}

var contractNames = map[string]string{
	"CDI": ContractCDI,
	"CDD": ContractCDD,
	"MIS": ContractInterim,
	"LIB": ContractIndependant,
}

type ftOffer struct {
	ID          string `json:"id"`
	Intitule    string `json:"intitule"`
	Description string `json:"description"`
	Date        string `json:"dateCreation"`
	RomeCode    string `json:"romeCode"`
	TypeContrat string `json:"typeContrat"`
	Lieu        struct {
		Libelle string `json:"libelle"`
	} `json:"lieuTravail"`
	Entreprise struct {
		Nom string `json:"nom"`
	} `json:"entreprise"`
	Salaire struct {
		Libelle string `json:"libelle"`
	} `json:"salaire"`
	Competences []struct {
		Libelle string `json:"libelle"`
	} `json:"competences"`
	Origine struct {
		URL string `json:"urlOrigine"`
	} `json:"origineOffre"`
}

// SearchJobs queries the live offers endpoint. Location is matched against
// the offer's place label since the API expects INSEE codes.
func (f *FranceTravail) SearchJobs(ctx context.Context, q JobQuery) ([]JobOffer, error) {
	params := url.Values{}
	params.Set("range", "0-49")
	if q.RomeCode != "" {
		params.Set("codeROME", q.RomeCode)
	}
	if q.Keywords != "" {
		params.Set("motsCles", q.Keywords)
	}
	if p, ok := contractParams[q.ContractType]; ok {
		params.Set(p[0], p[1])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL+"/offres/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobsearch: offers request: %w", err)
	}
	defer resp.Body.Close()

	out := []JobOffer{}
	switch {
	case resp.StatusCode == http.StatusNoContent:
		return out, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("jobsearch: offers endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		Resultats []ftOffer `json:"resultats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("jobsearch: decode offers: %w", err)
	}

	loc := strings.ToLower(q.Location)
	for _, o := range body.Resultats {
		if loc != "" && !strings.Contains(strings.ToLower(o.Lieu.Libelle), loc) {
			continue
		}
		out = append(out, o.toOffer(q.ContractType))
	}
	return out, nil
}

func (o ftOffer) toOffer(requested string) JobOffer {
	ct := contractNames[o.TypeContrat]
	if ct == "" {
		ct = requested
	}
	skills := make([]string, 0, len(o.Competences))
	for _, c := range o.Competences {
		skills = append(skills, c.Libelle)
	}
	published, _ := time.Parse(time.RFC3339, o.Date)
	return JobOffer{
		ID:           o.ID,
		Title:        o.Intitule,
		Company:      o.Entreprise.Nom,
		Location:     o.Lieu.Libelle,
		ContractType: ct,
		Salary:       o.Salaire.Libelle,
		Description:  o.Description,
		Skills:       skills,
		RomeCode:     o.RomeCode,
		PublishedAt:  published.UTC(),
		URL:          o.Origine.URL,
	}
}
