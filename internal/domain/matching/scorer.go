package matching

import (
	"fmt"
	"math"
	"strings"

	"persona-match/internal/domain/match"
	"persona-match/internal/domain/user"
)

// Weights of the additive sub-scores plus the experience dampener. Tunable
// without touching the scoring logic below.
const (
	WeightSkills       = 0.5
	WeightIndustry     = 0.2
	WeightProfessional = 0.1
	WeightPersonal     = 0.2

	// overall = additive * (ExperienceBase + ExperienceSpread*experience)
	ExperienceBase   = 0.8
	ExperienceSpread = 0.2

	// Industry mismatch keeps a floor so it never zeroes out an otherwise
	// strong candidate.
	industryMatchScore = 1.0
	industryFloorScore = 0.2

	experienceMismatchScore = 0.5

	personalFitNeutral = 0.5
)

// Distance bands for the locality fallback when neither city nor state match.
const (
	distBand10km  = 0.8
	distBand25km  = 0.6
	distBand50km  = 0.4
	distBand100km = 0.2
)

const earthRadiusKm = 6371.0

// Score evaluates candidate against subject's persona. Directional: the
// subject supplies the persona, so Score(a, b) and Score(b, a) are
// independent results. Both snapshots must carry profile and persona;
// callers filter incomplete snapshots before invoking.
func Score(subject, candidate user.Snapshot) match.Score {
	skills := skillsAlignment(subject, candidate)
	industry := industryAlignment(subject, candidate)
	professional := professionalFit(subject, candidate)
	personal := personalFit(subject, candidate)
	experience := experienceCompatibility(subject, candidate)

	additive := skills*WeightSkills +
		industry*WeightIndustry +
		professional*WeightProfessional +
		personal*WeightPersonal
	overall := clamp01(additive * (ExperienceBase + ExperienceSpread*experience))

	return match.Score{
		SkillsAlignment:         skills,
		IndustryAlignment:       industry,
		ProfessionalFit:         professional,
		PersonalFit:             personal,
		ExperienceCompatibility: experience,
		Overall:                 overall,
		Details: map[string]string{
			"skills_alignment":         fmt.Sprintf("%.4f", skills),
			"industry_alignment":       fmt.Sprintf("%.4f", industry),
			"professional_fit":         fmt.Sprintf("%.4f", professional),
			"personal_fit":             fmt.Sprintf("%.4f", personal),
			"experience_compatibility": fmt.Sprintf("%.4f", experience),
			"match_type":               string(subject.Persona.MatchType),
		},
	}
}

// skillsAlignment blends two overlaps: subject's own skills against the
// candidate's (shared ground) and the candidate's skills against what the
// subject's persona asks for. Normalized by the largest of the three sets so
// empty sets contribute zero instead of dividing by zero.
func skillsAlignment(subject, candidate user.Snapshot) float64 {
	u := toSet(subject.Profile.Skills)
	c := toSet(candidate.Profile.Skills)
	d := toSet(subject.Persona.SkillsDesired)

	maxPossible := len(u)
	if len(c) > maxPossible {
		maxPossible = len(c)
	}
	if len(d) > maxPossible {
		maxPossible = len(d)
	}
	if maxPossible == 0 {
		return 0
	}

	overlapUC := intersectCount(u, c)
	overlapCD := intersectCount(c, d)

	return clamp01(float64(overlapUC+overlapCD) / float64(2*maxPossible))
}

func industryAlignment(subject, candidate user.Snapshot) float64 {
	declared := normalize(candidate.Social.DeclaredIndustry)
	if declared == "" {
		return industryFloorScore
	}
	for _, pref := range subject.Persona.IndustryPreferences {
		if normalize(pref) == declared {
			return industryMatchScore
		}
	}
	return industryFloorScore
}

// professionalFit is a locality proxy. The branches are mutually exclusive in
// precedence order: city (+state) first, then state alone, then the haversine
// distance bands when both sides carry coordinates.
func professionalFit(subject, candidate user.Snapshot) float64 {
	sp, cp := subject.Profile, candidate.Profile

	sameCity := normalize(sp.City) != "" && normalize(sp.City) == normalize(cp.City)
	sameState := normalize(sp.State) != "" && normalize(sp.State) == normalize(cp.State)

	switch {
	case sameCity && sameState:
		return 1.0
	case sameCity:
		return 0.5
	case sameState:
		return 0.3
	}

	if sp.Latitude == nil || sp.Longitude == nil || cp.Latitude == nil || cp.Longitude == nil {
		return 0
	}

	km := haversineKm(*sp.Latitude, *sp.Longitude, *cp.Latitude, *cp.Longitude)
	switch {
	case km <= 10:
		return distBand10km
	case km <= 25:
		return distBand25km
	case km <= 50:
		return distBand50km
	case km <= 100:
		return distBand100km
	}
	return 0
}

func personalFit(subject, candidate user.Snapshot) float64 {
	u := toSet(subject.Profile.Skills)
	c := toSet(candidate.Profile.Skills)
	overlapUC := intersectCount(u, c)

	denom := len(u)
	if denom < 1 {
		denom = 1
	}
	similarRatio := float64(overlapUC) / float64(denom)

	sameProfession := normalize(subject.Profile.Profession) != "" &&
		normalize(subject.Profile.Profession) == normalize(candidate.Profile.Profession)

	switch subject.Persona.MatchType {
	case user.MatchTypeComplement:
		bonus := 0.0
		if !sameProfession {
			bonus = 1.0
		}
		return clamp01(0.7*(1-similarRatio) + 0.3*bonus)
	case user.MatchTypeMirror:
		bonus := 0.0
		if sameProfession {
			bonus = 1.0
		}
		return clamp01(0.7*similarRatio + 0.3*bonus)
	}
	return personalFitNeutral
}

func experienceCompatibility(subject, candidate user.Snapshot) float64 {
	pref := subject.Persona.ExperienceLevelPreference
	if pref == user.ExperienceAny || pref == "" {
		return 1.0
	}
	if pref == candidate.Persona.ExperienceLevelPreference {
		return 1.0
	}
	return experienceMismatchScore
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := normalize(it)
		if k == "" {
			continue
		}
		set[k] = struct{}{}
	}
	return set
}

func intersectCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
