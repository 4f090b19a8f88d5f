package narrative

// AnchorSet holds curated, non-invented evidence phrases for one domain.
// Strength phrases describe what went well, Improve phrases name the growth
// area, and Recommend phrases are concrete next actions. Both the ratings-only
// prompt and the template fallback draw from the same tables so every
// generation path describes the same evaluative stance.
type AnchorSet struct {
	Strength  []string
	Improve   []string
	Recommend []string
}

var anchors = map[Domain]AnchorSet{
	DomainCommunication: {
		Strength: []string{
			"clear communication of lesson expectations",
			"effective questioning and checking for understanding",
			"appropriate pacing and explanation of key concepts",
		},
		Improve: []string{
			"increasing student talk time and active participation",
			"strengthening clarity of directions and transitions",
			"using more varied engagement strategies during instruction",
		},
		Recommend: []string{
			"use structured questioning routines with wait time and follow-up questions",
			"add quick checks for understanding such as exit prompts or short quizzes",
			"plan engagement checkpoints like think-pair-share and guided practice",
		},
	},
	DomainManagement: {
		Strength: []string{
			"maintaining a respectful learning environment",
			"supporting lesson flow through routines and classroom organization",
			"promoting a focused classroom atmosphere",
		},
		Improve: []string{
			"strengthening routines for transitions and task completion",
			"using proactive behavior supports and consistent expectations",
			"maximizing instructional time through clearer procedures",
		},
		Recommend: []string{
			"establish and rehearse clear routines for entry, transitions, and group tasks",
			"use monitoring and positive reinforcement aligned with expectations",
			"tighten lesson structure with time cues and clear task directions",
		},
	},
	DomainAssessment: {
		Strength: []string{
			"monitoring learner progress through appropriate assessment practices",
			"aligning tasks with intended learning goals",
			"providing opportunities to demonstrate understanding",
		},
		Improve: []string{
			"making assessment evidence more frequent and formative",
			"strengthening the clarity and usefulness of feedback for next steps",
			"using success criteria so learners understand quality expectations",
		},
		Recommend: []string{
			"embed short formative checks aligned to objectives throughout the lesson",
			"use rubrics and success criteria with specific feedback tied to them",
			"include opportunities for corrections or revision after feedback",
		},
	},
}

// AnchorsFor returns the phrase tables for a domain, defaulting to the
// communication set for unknown domains so callers never index a nil table.
func AnchorsFor(d Domain) AnchorSet {
	if set, ok := anchors[d]; ok {
		return set
	}
	return anchors[DomainCommunication]
}

// openers keys the fallback generator's first sentence to the overall band.
var openers = map[Band][]string{
	BandExcellent: {
		"demonstrated excellent performance across the observed teaching domains",
		"delivered an excellent lesson with consistently strong, polished practice",
	},
	BandVerySatisfactory: {
		"demonstrated very satisfactory performance in the observed lesson",
		"showed strong, dependable practice across most teaching domains",
	},
	BandSatisfactory: {
		"demonstrated satisfactory performance in the observed lesson",
		"showed developing practice with a sound instructional foundation",
	},
	BandBelowSatisfactory: {
		"demonstrated below satisfactory performance in the observed lesson",
		"showed emerging practice with several areas requiring attention",
	},
	BandNeedsImprovement: {
		"demonstrated performance that needs improvement in the observed lesson",
		"showed practice that requires focused support and development",
	},
}
