package matching

import (
	"math"
	"testing"

	"persona-match/internal/domain/user"

	"github.com/google/uuid"
)

func snapshot(mutate func(*user.Profile, *user.Persona)) user.Snapshot {
	profile := &user.Profile{
		City:       "Austin",
		State:      "TX",
		Profession: "Software Engineer",
		Skills:     []string{"Go", "PostgreSQL"},
	}
	persona := &user.Persona{
		MatchType:                 user.MatchTypeMirror,
		SkillsDesired:             []string{"Go"},
		ExperienceLevelPreference: user.ExperienceAny,
	}
	if mutate != nil {
		mutate(profile, persona)
	}
	return user.Snapshot{UserID: uuid.New(), Profile: profile, Persona: persona}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreDeterministic(t *testing.T) {
	subject := snapshot(nil)
	candidate := snapshot(func(p *user.Profile, _ *user.Persona) {
		p.Skills = []string{"Go", "Kubernetes"}
	})

	first := Score(subject, candidate)
	for i := 0; i < 10; i++ {
		again := Score(subject, candidate)
		if again.Overall != first.Overall {
			t.Fatalf("run %d: overall = %v, want %v", i, again.Overall, first.Overall)
		}
	}
}

func TestScoreOverallInRange(t *testing.T) {
	cases := []struct {
		name      string
		subject   user.Snapshot
		candidate user.Snapshot
	}{
		{"identical twins", snapshot(nil), snapshot(nil)},
		{"empty skills", snapshot(func(p *user.Profile, pe *user.Persona) {
			p.Skills = nil
			pe.SkillsDesired = nil
		}), snapshot(func(p *user.Profile, _ *user.Persona) { p.Skills = nil })},
		{"everything aligned", snapshot(func(p *user.Profile, pe *user.Persona) {
			p.Skills = []string{"Go", "PostgreSQL", "Redis"}
			pe.SkillsDesired = []string{"Go", "PostgreSQL", "Redis"}
			pe.IndustryPreferences = []string{"Technology"}
		}), func() user.Snapshot {
			s := snapshot(func(p *user.Profile, _ *user.Persona) {
				p.Skills = []string{"Go", "PostgreSQL", "Redis"}
			})
			s.Social.DeclaredIndustry = "Technology"
			return s
		}()},
	}

	for _, tc := range cases {
		score := Score(tc.subject, tc.candidate)
		if score.Overall < 0 || score.Overall > 1 {
			t.Fatalf("%s: overall %v outside [0,1]", tc.name, score.Overall)
		}
		for label, sub := range map[string]float64{
			"skills":       score.SkillsAlignment,
			"industry":     score.IndustryAlignment,
			"professional": score.ProfessionalFit,
			"personal":     score.PersonalFit,
			"experience":   score.ExperienceCompatibility,
		} {
			if sub < 0 || sub > 1 {
				t.Fatalf("%s: %s sub-score %v outside [0,1]", tc.name, label, sub)
			}
		}
	}
}

func TestScoreOverallFormula(t *testing.T) {
	subject := snapshot(nil)
	candidate := snapshot(nil)
	candidate.Social.DeclaredIndustry = "Finance"

	score := Score(subject, candidate)

	additive := score.SkillsAlignment*WeightSkills +
		score.IndustryAlignment*WeightIndustry +
		score.ProfessionalFit*WeightProfessional +
		score.PersonalFit*WeightPersonal
	want := additive * (ExperienceBase + ExperienceSpread*score.ExperienceCompatibility)

	if !almostEqual(score.Overall, want) {
		t.Fatalf("overall = %v, want %v", score.Overall, want)
	}
}

func TestScoreExactFixture(t *testing.T) {
	// Disjoint skills, different city/state, no coordinates, complement
	// persona, mismatched experience preference. Hand computed:
	// skills 0, industry floor 0.2, professional 0, personal 1.0,
	// experience 0.5 -> (0.2*0.2 + 1.0*0.2) * 0.9 = 0.216.
	subject := snapshot(func(p *user.Profile, pe *user.Persona) {
		p.Skills = []string{"Go", "PostgreSQL"}
		pe.MatchType = user.MatchTypeComplement
		pe.SkillsDesired = []string{"Sales"}
		pe.ExperienceLevelPreference = user.ExperienceSenior
	})
	candidate := snapshot(func(p *user.Profile, pe *user.Persona) {
		p.Skills = []string{"Figma"}
		p.City, p.State = "Boston", "MA"
		p.Profession = "Product Designer"
		pe.ExperienceLevelPreference = user.ExperienceEntryLevel
	})

	score := Score(subject, candidate)
	if !almostEqual(score.Overall, 0.216) {
		t.Fatalf("overall = %v, want 0.216", score.Overall)
	}
}

func TestSkillsAlignment(t *testing.T) {
	t.Run("no skills anywhere scores zero", func(t *testing.T) {
		subject := snapshot(func(p *user.Profile, pe *user.Persona) {
			p.Skills = nil
			pe.SkillsDesired = nil
		})
		candidate := snapshot(func(p *user.Profile, _ *user.Persona) { p.Skills = nil })

		if got := skillsAlignment(subject, candidate); got != 0 {
			t.Fatalf("skillsAlignment = %v, want 0", got)
		}
	})

	t.Run("full overlap with desired skills", func(t *testing.T) {
		subject := snapshot(func(p *user.Profile, pe *user.Persona) {
			p.Skills = []string{"Go", "PostgreSQL"}
			pe.SkillsDesired = []string{"Go", "PostgreSQL"}
		})
		candidate := snapshot(func(p *user.Profile, _ *user.Persona) {
			p.Skills = []string{"Go", "PostgreSQL"}
		})

		// overlapUC=2, overlapCD=2, maxPossible=2 -> (2+2)/(2*2) = 1
		if got := skillsAlignment(subject, candidate); !almostEqual(got, 1) {
			t.Fatalf("skillsAlignment = %v, want 1", got)
		}
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		subject := snapshot(func(p *user.Profile, pe *user.Persona) {
			p.Skills = []string{"go"}
			pe.SkillsDesired = []string{" GO "}
		})
		candidate := snapshot(func(p *user.Profile, _ *user.Persona) {
			p.Skills = []string{"Go"}
		})

		if got := skillsAlignment(subject, candidate); !almostEqual(got, 1) {
			t.Fatalf("skillsAlignment = %v, want 1", got)
		}
	})
}

func TestIndustryAlignment(t *testing.T) {
	subject := snapshot(func(_ *user.Profile, pe *user.Persona) {
		pe.IndustryPreferences = []string{"Healthcare", "Technology"}
	})

	match := snapshot(nil)
	match.Social.DeclaredIndustry = "technology"
	if got := industryAlignment(subject, match); got != industryMatchScore {
		t.Fatalf("matching industry = %v, want %v", got, industryMatchScore)
	}

	miss := snapshot(nil)
	miss.Social.DeclaredIndustry = "Agriculture"
	if got := industryAlignment(subject, miss); got != industryFloorScore {
		t.Fatalf("mismatching industry = %v, want floor %v", got, industryFloorScore)
	}

	unknown := snapshot(nil)
	if got := industryAlignment(subject, unknown); got != industryFloorScore {
		t.Fatalf("missing industry = %v, want floor %v", got, industryFloorScore)
	}
}

func TestProfessionalFitPrecedence(t *testing.T) {
	lat := func(v float64) *float64 { return &v }

	t.Run("same city and state", func(t *testing.T) {
		a := snapshot(nil)
		b := snapshot(nil)
		if got := professionalFit(a, b); got != 1.0 {
			t.Fatalf("same city+state = %v, want 1.0", got)
		}
	})

	t.Run("same city only", func(t *testing.T) {
		a := snapshot(nil)
		b := snapshot(func(p *user.Profile, _ *user.Persona) { p.State = "OK" })
		if got := professionalFit(a, b); got != 0.5 {
			t.Fatalf("same city = %v, want 0.5", got)
		}
	})

	t.Run("same state only", func(t *testing.T) {
		a := snapshot(nil)
		b := snapshot(func(p *user.Profile, _ *user.Persona) { p.City = "Dallas" })
		if got := professionalFit(a, b); got != 0.3 {
			t.Fatalf("same state = %v, want 0.3", got)
		}
	})

	t.Run("city comparison ignores case", func(t *testing.T) {
		a := snapshot(nil)
		b := snapshot(func(p *user.Profile, _ *user.Persona) { p.City = "AUSTIN" })
		if got := professionalFit(a, b); got != 1.0 {
			t.Fatalf("case-folded city = %v, want 1.0", got)
		}
	})

	t.Run("distance bands", func(t *testing.T) {
		// 1 degree of latitude is roughly 111 km, so nudging latitude by a
		// known fraction lands inside each band.
		cases := []struct {
			deltaLat float64
			want     float64
		}{
			{0.05, distBand10km},  // ~5.6 km
			{0.15, distBand25km},  // ~16.7 km
			{0.40, distBand50km},  // ~44.5 km
			{0.80, distBand100km}, // ~89 km
			{1.50, 0},             // ~167 km
		}
		for _, tc := range cases {
			a := snapshot(func(p *user.Profile, _ *user.Persona) {
				p.City, p.State = "", ""
				p.Latitude, p.Longitude = lat(30.0), lat(-97.7)
			})
			b := snapshot(func(p *user.Profile, _ *user.Persona) {
				p.City, p.State = "", ""
				p.Latitude, p.Longitude = lat(30.0+tc.deltaLat), lat(-97.7)
			})
			if got := professionalFit(a, b); got != tc.want {
				t.Fatalf("delta %v deg: professionalFit = %v, want %v", tc.deltaLat, got, tc.want)
			}
		}
	})

	t.Run("missing coordinates score zero", func(t *testing.T) {
		a := snapshot(func(p *user.Profile, _ *user.Persona) { p.City, p.State = "", "" })
		b := snapshot(func(p *user.Profile, _ *user.Persona) {
			p.City, p.State = "", ""
			p.Latitude, p.Longitude = lat(30.0), lat(-97.7)
		})
		if got := professionalFit(a, b); got != 0 {
			t.Fatalf("one side without coordinates = %v, want 0", got)
		}
	})
}

func TestPersonalFit(t *testing.T) {
	t.Run("mirror rewards overlap and same profession", func(t *testing.T) {
		subject := snapshot(func(p *user.Profile, pe *user.Persona) {
			pe.MatchType = user.MatchTypeMirror
			p.Skills = []string{"Go", "PostgreSQL"}
		})
		candidate := snapshot(func(p *user.Profile, _ *user.Persona) {
			p.Skills = []string{"Go", "PostgreSQL"}
		})

		// similarRatio=1, same profession -> 0.7*1 + 0.3*1 = 1
		if got := personalFit(subject, candidate); !almostEqual(got, 1) {
			t.Fatalf("mirror twin = %v, want 1", got)
		}
	})

	t.Run("complement rewards disjoint skills and different profession", func(t *testing.T) {
		subject := snapshot(func(p *user.Profile, pe *user.Persona) {
			pe.MatchType = user.MatchTypeComplement
			p.Skills = []string{"Go", "PostgreSQL"}
		})
		candidate := snapshot(func(p *user.Profile, _ *user.Persona) {
			p.Skills = []string{"Figma", "Illustrator"}
			p.Profession = "Product Designer"
		})

		// similarRatio=0, different profession -> 0.7*1 + 0.3*1 = 1
		if got := personalFit(subject, candidate); !almostEqual(got, 1) {
			t.Fatalf("complement opposite = %v, want 1", got)
		}
	})

	t.Run("complement penalizes a twin", func(t *testing.T) {
		subject := snapshot(func(p *user.Profile, pe *user.Persona) {
			pe.MatchType = user.MatchTypeComplement
			p.Skills = []string{"Go", "PostgreSQL"}
		})
		candidate := snapshot(func(p *user.Profile, _ *user.Persona) {
			p.Skills = []string{"Go", "PostgreSQL"}
		})

		// similarRatio=1, same profession -> 0.7*0 + 0.3*0 = 0
		if got := personalFit(subject, candidate); !almostEqual(got, 0) {
			t.Fatalf("complement twin = %v, want 0", got)
		}
	})

	t.Run("unknown match type is neutral", func(t *testing.T) {
		subject := snapshot(func(_ *user.Profile, pe *user.Persona) {
			pe.MatchType = user.MatchType("")
		})
		candidate := snapshot(nil)
		if got := personalFit(subject, candidate); got != personalFitNeutral {
			t.Fatalf("unknown match type = %v, want %v", got, personalFitNeutral)
		}
	})
}

func TestExperienceCompatibility(t *testing.T) {
	anyPref := snapshot(nil)
	candidate := snapshot(func(_ *user.Profile, pe *user.Persona) {
		pe.ExperienceLevelPreference = user.ExperienceSenior
	})
	if got := experienceCompatibility(anyPref, candidate); got != 1.0 {
		t.Fatalf("any preference = %v, want 1.0", got)
	}

	seniorPref := snapshot(func(_ *user.Profile, pe *user.Persona) {
		pe.ExperienceLevelPreference = user.ExperienceSenior
	})
	if got := experienceCompatibility(seniorPref, candidate); got != 1.0 {
		t.Fatalf("matched preference = %v, want 1.0", got)
	}

	juniorCandidate := snapshot(func(_ *user.Profile, pe *user.Persona) {
		pe.ExperienceLevelPreference = user.ExperienceEntryLevel
	})
	if got := experienceCompatibility(seniorPref, juniorCandidate); got != experienceMismatchScore {
		t.Fatalf("mismatched preference = %v, want %v", got, experienceMismatchScore)
	}
}

func TestScoreAsymmetry(t *testing.T) {
	// The persona comes from the subject, so swapping the direction must be
	// allowed to produce a different score.
	a := snapshot(func(p *user.Profile, pe *user.Persona) {
		pe.MatchType = user.MatchTypeComplement
		p.Skills = []string{"Go"}
	})
	b := snapshot(func(p *user.Profile, pe *user.Persona) {
		pe.MatchType = user.MatchTypeMirror
		p.Skills = []string{"Go"}
	})

	ab := Score(a, b)
	ba := Score(b, a)
	if ab.PersonalFit == ba.PersonalFit {
		t.Fatalf("expected asymmetric personal fit, both sides = %v", ab.PersonalFit)
	}
}

func TestScoreDetails(t *testing.T) {
	score := Score(snapshot(nil), snapshot(nil))
	for _, key := range []string{
		"skills_alignment", "industry_alignment", "professional_fit",
		"personal_fit", "experience_compatibility", "match_type",
	} {
		if _, ok := score.Details[key]; !ok {
			t.Fatalf("details missing %q", key)
		}
	}
	if score.Details["match_type"] != string(user.MatchTypeMirror) {
		t.Fatalf("details match_type = %q, want %q", score.Details["match_type"], user.MatchTypeMirror)
	}
}
