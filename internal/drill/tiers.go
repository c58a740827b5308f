package drill

// TierLevel orders result tiers from worst to best.
type TierLevel int

const (
	TierDepleted TierLevel = iota
	TierDefault
	TierThird
	TierSecond
	TierTop
)

// Tier is the headline shown on a results screen.
type Tier struct {
	Level   TierLevel
	Emoji   string
	Title   string
	TitleBN string
}

type tierRule struct {
	min  int
	tier Tier
}

var (
	quizTiers = []tierRule{
		{90, Tier{TierTop, "🏆", "Excellent!", "অসাধারণ! আপনি দারুণ করেছেন!"}},
		{70, Tier{TierSecond, "🎉", "Great Job!", "চমৎকার! আরও একটু চেষ্টা করুন!"}},
		{50, Tier{TierThird, "👍", "Good Effort!", "ভালো চেষ্টা! আবার অভ্যাস করুন।"}},
		{0, Tier{TierDefault, "📚", "Keep Practicing!", "আরও অভ্যাস করুন — আপনি পারবেন!"}},
	}

	// Practice has no 50-69 band; hearts handle the low end.
	practiceTiers = []tierRule{
		{90, Tier{TierTop, "🏆", "Excellent!", "অসাধারণ! আপনি দারুণ করেছেন!"}},
		{70, Tier{TierSecond, "🎉", "Great Job!", "চমৎকার! আরও একটু চেষ্টা করুন!"}},
		{0, Tier{TierDefault, "📚", "Keep Practicing!", "আরও অভ্যাস করুন — আপনি পারবেন!"}},
	}

	dictationTiers = []tierRule{
		{90, Tier{TierTop, "🎧", "Excellent Listening!", "অসাধারণ! আপনার শোনার দক্ষতা দারুণ!"}},
		{70, Tier{TierSecond, "🎉", "Great Listening!", "চমৎকার! আরও একটু মনোযোগ দিন!"}},
		{50, Tier{TierThird, "👂", "Keep Listening!", "ভালো চেষ্টা! আরও শুনুন।"}},
		{0, Tier{TierDefault, "🔁", "Listen Again!", "আবার শুনুন — আপনি পারবেন!"}},
	}

	outOfHearts = Tier{TierDepleted, "💔", "Out of Hearts!", "হার্ট শেষ! আবার চেষ্টা করুন।"}
)

func pickTier(rules []tierRule, pct int) Tier {
	for _, r := range rules {
		if pct >= r.min {
			return r.tier
		}
	}
	return rules[len(rules)-1].tier
}

// QuizTier returns the quiz result tier for a percentage.
func QuizTier(pct int) Tier { return pickTier(quizTiers, pct) }

// DictationTier returns the dictation result tier for a percentage.
func DictationTier(pct int) Tier { return pickTier(dictationTiers, pct) }

// PracticeTier returns the practice result tier. A session that ran out of
// hearts always gets the depleted tier.
func PracticeTier(pct int, heartsDepleted bool) Tier {
	if heartsDepleted {
		return outOfHearts
	}
	return pickTier(practiceTiers, pct)
}
