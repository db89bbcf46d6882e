// Package flow – the Honey conversation script.
//
// This file defines the concrete graph the production widget walks: the
// onboarding questions (language, gender, location, age, marital status),
// the family-planning branches, the sex-life branch, and the closing
// next-action menu with its human-agent escalation trigger.
package flow

// Response-log categories tagged onto turns by node.
const (
	CategoryDemographics   = "demographics"
	CategoryFPM            = "fpm"
	CategorySexEnhancement = "sex_enhancement"
	CategoryNavigation     = "navigation"
	CategoryEscalation     = "escalation"
)

// Intent values written to the profile when the visitor picks a goal.
const (
	IntentPreventPregnancy = "prevent_pregnancy"
	IntentGetPregnant      = "get_pregnant"
	IntentImproveSexLife   = "improve_sex_life"
)

// Well-known step keys referenced outside the graph definition.
const (
	StepLanguage    = "language"
	StepGender      = "gender"
	StepState       = "state_search"
	StepLGA         = "lga_search"
	StepAge         = "age"
	StepMarital     = "marital"
	StepFPM         = "fpm"
	StepNextAction  = "next_action"
	StepHumanAgent  = "human_agent"
	StepFindClinic  = "find_clinic"
	StepGoodbye     = "goodbye"
	StepNotCovered  = "not_covered"
	StepMethodsInfo = "method_details"
)

// HoneyGraph builds the production conversation graph. states and lgas back
// the two search-list widgets; an empty LGA index makes the LGA step accept
// any non-blank free text (deployments without the LGA data file).
func HoneyGraph(states, lgas Matcher) (*Graph, error) {
	lgaRule := &FreeTextRule{
		Matcher: lgas,
		Target:  StepAge,
		Effects: []Effect{{Field: FieldLGA}},
	}

	nodes := []Node{
		{
			Key:    StepLanguage,
			Prompt: "Hey! My name is Honey. I am a family planning and pregnancy prevention chatbot. What language would you like to chat in?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "English", Label: "English"},
				{ID: "Hausa", Label: "Hausa"},
				{ID: "Yoruba", Label: "Yoruba"},
			},
			Transitions: map[string]Transition{
				"English": {Target: StepGender, Effects: []Effect{{Field: FieldLanguage}}},
				"Hausa":   {Target: StepGender, Effects: []Effect{{Field: FieldLanguage}}},
				"Yoruba":  {Target: StepGender, Effects: []Effect{{Field: FieldLanguage}}},
			},
			Category: CategoryDemographics,
		},
		{
			Key:    StepGender,
			Prompt: "Before we continue, I would like to ask you a few questions to assist you better. What is your gender?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Female", Label: "Female"},
				{ID: "Male", Label: "Male"},
				{ID: "Prefer not to say", Label: "Prefer not to say"},
			},
			Next:        StepState,
			NextEffects: []Effect{{Field: FieldGender}},
			Category:    CategoryDemographics,
		},
		{
			Key:    StepState,
			Prompt: "What state are you chatting from?",
			Widget: WidgetSearchList,
			FreeText: &FreeTextRule{
				Matcher: states,
				Target:  StepLGA,
				Effects: []Effect{{Field: FieldState}},
			},
			Category: CategoryDemographics,
		},
		{
			Key:      StepLGA,
			Prompt:   "What Local Government Area (LGA) are you chatting from?",
			Widget:   WidgetSearchList,
			FreeText: lgaRule,
			Category: CategoryDemographics,
		},
		{
			Key:    StepAge,
			Prompt: "How old are you?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Below 18", Label: "Below 18"},
				{ID: "18-24", Label: "18-24"},
				{ID: "25-34", Label: "25-34"},
				{ID: "35-44", Label: "35-44"},
				{ID: "45 and above", Label: "45 and above"},
			},
			Next:        StepMarital,
			NextEffects: []Effect{{Field: FieldAgeGroup}},
			Category:    CategoryDemographics,
		},
		{
			Key:    StepMarital,
			Prompt: "What is your current marital status?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Single", Label: "Single"},
				{ID: "Married", Label: "Married"},
				{ID: "Divorced", Label: "Divorced"},
				{ID: "Widowed", Label: "Widowed"},
			},
			Next:        StepFPM,
			NextEffects: []Effect{{Field: FieldMaritalStatus}},
			Category:    CategoryDemographics,
		},
		{
			Key:    StepFPM,
			Prompt: "Thank you for sharing! I can provide you with information about Family Planning Methods (FPM) or other sex-related questions. What do you want to know?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "How to prevent pregnancy", Label: "How to prevent pregnancy"},
				{ID: "How to get pregnant", Label: "How to get pregnant"},
				{ID: "How to improve sex life", Label: "How to improve sex life"},
				{ID: "Talk to a human agent", Label: "Talk to a human agent"},
			},
			Transitions: map[string]Transition{
				"How to prevent pregnancy": {
					Target:  "contraception",
					Effects: []Effect{{Field: FieldIntent, Value: IntentPreventPregnancy}},
				},
				"How to get pregnant": {
					Target:  StepNotCovered,
					Effects: []Effect{{Field: FieldIntent, Value: IntentGetPregnant}},
				},
				"How to improve sex life": {
					Target:  "sex_enhancement",
					Effects: []Effect{{Field: FieldIntent, Value: IntentImproveSexLife}},
				},
				"Talk to a human agent": {Target: StepHumanAgent},
			},
			Category: CategoryFPM,
		},
		{
			Key:    "contraception",
			Prompt: "I see! You are at the right place, I can assist you with this. What kind of contraception do you want to know about? Emergency = you had sex recently and want to avoid pregnancy.",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Emergency", Label: "Emergency"},
				{ID: "Prevent in future", Label: "Prevent in future"},
			},
			Transitions: map[string]Transition{
				"Emergency": {
					Target:  "emergency_product",
					Effects: []Effect{{Field: FieldConcernType, Value: "emergency"}},
				},
				"Prevent in future": {
					Target:  "duration",
					Effects: []Effect{{Field: FieldConcernType, Value: "prevention"}},
				},
			},
			Category: CategoryFPM,
		},
		{
			Key:    "emergency_product",
			Prompt: "These are the emergency contraceptive products I can tell you about. Which one would you like to know more about?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Postpill", Label: "Postpill"},
				{ID: "Postinor-2", Label: "Postinor-2"},
			},
			Next:        StepMethodsInfo,
			NextEffects: []Effect{{Field: FieldCurrentFPM}},
			Category:    CategoryFPM,
		},
		{
			Key:    "duration",
			Prompt: "How long would you like to prevent pregnancy for?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Up to 1 year", Label: "Up to 1 year"},
				{ID: "1-2 years", Label: "1-2 years"},
				{ID: "3-4 years", Label: "3-4 years"},
				{ID: "5 years and above", Label: "5 years and above"},
			},
			Next:     StepMethodsInfo,
			Category: CategoryFPM,
		},
		{
			Key:    StepMethodsInfo,
			Prompt: "Here is what I can share about this method. What would you like to see?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Tell me more", Label: "Tell me more"},
				{ID: "How to use", Label: "How to use"},
				{ID: "Side effects", Label: "Side effects"},
			},
			Next:     StepNextAction,
			Category: CategoryFPM,
		},
		{
			Key:    "sex_enhancement",
			Prompt: "I can help with that. What would you like to improve?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Hard erection", Label: "Hard erection"},
				{ID: "Long lasting sex", Label: "Long lasting sex"},
				{ID: "Lubricants", Label: "Lubricants"},
			},
			Transitions: map[string]Transition{
				"Hard erection": {
					Target:  StepNextAction,
					Effects: []Effect{{Field: FieldConcernType, Value: "erection"}},
				},
				"Long lasting sex": {
					Target:  StepNextAction,
					Effects: []Effect{{Field: FieldConcernType, Value: "stamina"}},
				},
				"Lubricants": {
					Target:  "lubricant",
					Effects: []Effect{{Field: FieldConcernType, Value: "lubricant"}},
				},
			},
			Category: CategorySexEnhancement,
		},
		{
			Key:    "lubricant",
			Prompt: "These are the lubricants I can tell you about. Which one interests you?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Fiesta Intim Gel", Label: "Fiesta Intim Gel"},
				{ID: "KY Jelly", Label: "KY Jelly"},
			},
			Next:        StepNextAction,
			NextEffects: []Effect{{Field: FieldCurrentFPM}},
			Category:    CategorySexEnhancement,
		},
		{
			Key:    StepNotCovered,
			Prompt: "I am sorry, I cannot help with that topic yet. Would you like to try something else?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Back to topics", Label: "Back to topics"},
				{ID: "Talk to a human agent", Label: "Talk to a human agent"},
			},
			Transitions: map[string]Transition{
				"Back to topics":        {Target: StepFPM},
				"Talk to a human agent": {Target: StepHumanAgent},
			},
			Category: CategoryNavigation,
		},
		{
			Key:    StepNextAction,
			Prompt: "What would you like to do next?",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Learn about other methods", Label: "Learn about other methods"},
				{ID: "Find a clinic near me", Label: "Find a clinic near me"},
				{ID: "Talk to a human agent", Label: "Talk to a human agent"},
				{ID: "End this chat", Label: "End this chat"},
			},
			Transitions: map[string]Transition{
				"Learn about other methods": {Target: StepFPM},
				"Find a clinic near me":     {Target: StepFindClinic},
				"Talk to a human agent":     {Target: StepHumanAgent},
				"End this chat":             {Target: StepGoodbye},
			},
			Category: CategoryNavigation,
		},
		{
			Key:    StepFindClinic,
			Prompt: "I will look up clinics in your area using the state and LGA you shared. You can adjust the search on the next screen.",
			Widget: WidgetSingleSelect,
			Options: []Option{
				{ID: "Show clinics", Label: "Show clinics"},
				{ID: "Back", Label: "Back"},
			},
			Transitions: map[string]Transition{
				"Show clinics": {Target: StepNextAction},
				"Back":         {Target: StepNextAction},
			},
			Category: CategoryNavigation,
		},
		{
			Key:      StepHumanAgent,
			Prompt:   "Alright, I am connecting you to one of our agents. Please hold on, someone will be with you shortly.",
			Widget:   WidgetFreeText,
			Escalate: true,
			Category: CategoryEscalation,
		},
		{
			Key:      StepGoodbye,
			Prompt:   "Thank you for chatting with Honey today. Stay safe, and come back any time!",
			Widget:   WidgetFreeText,
			Category: CategoryNavigation,
		},
	}

	return New(StepLanguage, nodes)
}
