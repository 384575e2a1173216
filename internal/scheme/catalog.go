package scheme

import (
	"strconv"
	"strings"
)

// Scheme is one welfare scheme in the static catalog. Names, descriptions and
// tags are Marathi because that is the catalog's native language; queries are
// translated to Marathi before matching.
type Scheme struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	RequiredFields []string `json:"required_fields"`
}

// CheckResult is the eligibility verdict for one scheme against a profile.
type CheckResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
	Missing  []string `json:"missing"`
}

const (
	IDOldAgePension = "old_age_pension"
	IDUjjwala       = "ujjwala"
	IDPMAY          = "pmay"
	IDPMKisan       = "pm_kisan"
	IDAyushman      = "ayushman_bharat"
)

// Catalog is the static domain data the assistant reasons over.
var Catalog = []Scheme{
	{
		ID:             IDOldAgePension,
		Name:           "इंदिरा गांधी राष्ट्रीय वृद्धापकाळ निवृत्तीवेतन योजना",
		Description:    "६० वर्षांवरील गरीब ज्येष्ठ नागरिकांसाठी मासिक निवृत्तीवेतन.",
		Tags:           []string{"पेन्शन", "वृद्ध", "ज्येष्ठ नागरिक", "निवृत्तीवेतन"},
		RequiredFields: []string{"name", "age", "income"},
	},
	{
		ID:             IDUjjwala,
		Name:           "प्रधानमंत्री उज्ज्वला योजना",
		Description:    "गरीब कुटुंबांतील महिलांना मोफत गॅस जोडणी.",
		Tags:           []string{"गॅस", "महिला", "उज्ज्वला", "एलपीजी"},
		RequiredFields: []string{"name", "gender"},
	},
	{
		ID:             IDPMAY,
		Name:           "प्रधानमंत्री आवास योजना",
		Description:    "पक्के घर नसलेल्या कुटुंबांसाठी घरकुल अनुदान.",
		Tags:           []string{"घर", "आवास", "घरकुल", "अनुदान"},
		RequiredFields: []string{"name", "income", "has_pucca_house"},
	},
	{
		ID:             IDPMKisan,
		Name:           "पीएम किसान सन्मान निधी",
		Description:    "अल्पभूधारक शेतकऱ्यांना वार्षिक अर्थसहाय्य.",
		Tags:           []string{"शेतकरी", "किसान", "शेती", "अर्थसहाय्य"},
		RequiredFields: []string{"name", "land_holding"},
	},
	{
		ID:             IDAyushman,
		Name:           "आयुष्मान भारत योजना",
		Description:    "गरीब कुटुंबांसाठी मोफत आरोग्य विमा संरक्षण.",
		Tags:           []string{"आरोग्य", "विमा", "उपचार", "रुग्णालय"},
		RequiredFields: []string{"name", "income"},
	},
}

// ByID returns the catalog entry for id, or nil when the id is unknown.
func ByID(id string) *Scheme {
	id = strings.TrimSpace(id)
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

// Search shortlists schemes whose name, description or tags contain the
// query, case-insensitively. When nothing matches, a second pass matches the
// query as a substring of individual tags. An empty query returns the whole
// catalog (capped at maxResults).
func Search(query string, maxResults int) []Scheme {
	if maxResults <= 0 {
		maxResults = 5
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var hits []Scheme
	for _, s := range Catalog {
		hay := strings.ToLower(s.Name + " " + s.Description + " " + strings.Join(s.Tags, " "))
		if q == "" || strings.Contains(hay, q) {
			hits = append(hits, s)
		}
	}
	if len(hits) == 0 && q != "" {
		for _, s := range Catalog {
			for _, tag := range s.Tags {
				if strings.Contains(strings.ToLower(tag), q) {
					hits = append(hits, s)
					break
				}
			}
		}
	}
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits
}

// CheckEligibility applies field-presence checks plus the scheme-specific
// rules to a profile. Missing required fields short-circuit the verdict.
func CheckEligibility(profile map[string]string, schemeID string) CheckResult {
	s := ByID(schemeID)
	if s == nil {
		return CheckResult{Eligible: false, Reasons: []string{"योजना सापडली नाही."}, Missing: []string{}}
	}

	var missing []string
	for _, f := range s.RequiredFields {
		if strings.TrimSpace(profile[f]) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return CheckResult{Eligible: false, Reasons: []string{}, Missing: missing}
	}

	res := CheckResult{Eligible: true, Reasons: []string{}, Missing: []string{}}
	switch s.ID {
	case IDOldAgePension:
		age, err := strconv.Atoi(strings.TrimSpace(profile["age"]))
		switch {
		case err != nil:
			res.Eligible = false
			res.Reasons = append(res.Reasons, "वय स्पष्ट नाही.")
		case age < 60:
			res.Eligible = false
			res.Reasons = append(res.Reasons, "वय 60 वर्षांपेक्षा कमी आहे.")
		}
	case IDUjjwala:
		gender := strings.ToLower(profile["gender"])
		if gender != "" && !strings.Contains(gender, "female") &&
			!strings.Contains(gender, "स्त्री") && !strings.Contains(gender, "महिला") {
			res.Reasons = append(res.Reasons, "ही योजना प्रामुख्याने महिलांसाठी आहे; तरीही कुटुंब पात्रता तपासावी लागेल.")
		}
	case IDPMAY:
		has := strings.ToLower(strings.TrimSpace(profile["has_pucca_house"]))
		switch has {
		case "yes", "होय", "आहे":
			res.Eligible = false
			res.Reasons = append(res.Reasons, "आपल्याकडे पक्के घर असल्यास या योजनेअंतर्गत अपात्रता असू शकते.")
		}
	}
	return res
}

// BuildChecklist returns the application document checklist for a scheme as
// voice-friendly Marathi lines.
func BuildChecklist(schemeID string) string {
	s := ByID(schemeID)
	if s == nil {
		return "योजना सापडली नाही, चेकलिस्ट बनवता आली नाही."
	}
	items := []string{
		"योजना: " + s.Name,
		"ओळखपत्र: आधार/मतदार ओळखपत्र (OTP/PIN कधीही देऊ नका)",
		"पत्ता पुरावा",
		"बँक खाते तपशील",
		"उत्पन्न दाखला (लागू असल्यास)",
		"जात प्रमाणपत्र (लागू असल्यास)",
		"पासपोर्ट साईज फोटो",
	}
	return strings.Join(items, "\n")
}
