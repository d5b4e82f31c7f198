package engine

// CrisisLine is appended verbatim whenever a risk flag is set.
const CrisisLine = "If you are thinking about hurting yourself or feel unsafe, please reach out right now to someone you trust or a crisis line; in the US you can call or text 988."

const closingNudge = "Whatever you pick, keep it small and kind to yourself, because progress still counts on hard days."

// openers[mood][variant] holds mood-tailored opening lines. The style profile
// chooses the variant, the seed chooses the line.
var openers = map[string][][]string{
	MoodOverwhelmed: {
		{
			"It sounds like a lot is landing on you at once right now.",
			"That is a heavy load to carry, and it makes sense that you feel stretched thin.",
			"When everything piles up like this, feeling overwhelmed is a very human response.",
		},
		{
			"Thank you for putting this into words, because naming the pressure is already a start.",
			"You are juggling more than anyone comfortably could, so be gentle with yourself here.",
			"Feeling flooded by demands is exhausting, and you are far from alone in it.",
		},
		{
			"Let us slow this down together for a moment before tackling anything.",
			"Before solving anything, take one breath; the pile will still be there in a minute.",
			"Pressure like this makes every task feel urgent, even when only some of them are.",
		},
	},
	MoodTired: {
		{
			"It sounds like your energy has been running low for a while.",
			"Being this worn out makes everything harder, so your reaction makes a lot of sense.",
			"Tiredness like this is a signal worth listening to, not a personal failing.",
		},
		{
			"Thanks for sharing this, since being drained can quietly color a whole day.",
			"Running on empty is rough, and it is okay to admit that you need real rest.",
			"When sleep and energy slip, even small tasks can start to feel enormous.",
		},
		{
			"Try treating rest as part of the plan rather than a reward saved for the end.",
			"Your body may be asking for a pause, and that request deserves some attention.",
			"Fatigue has a way of shrinking patience and focus, so go easy on yourself today.",
		},
	},
	MoodLow: {
		{
			"I am sorry things feel this heavy for you right now.",
			"It takes courage to write about feeling low, and I am glad you did.",
			"Low days can make everything look grey, including how you see yourself.",
		},
		{
			"Thank you for trusting this space with something that hurts.",
			"Feeling down does not mean you are doing anything wrong; it means you are human.",
			"When mood dips, the kindest move is often a very small one.",
		},
		{
			"Let us keep things gentle and simple while you are feeling this way.",
			"Heavy feelings tend to shrink the future, so we will focus on just today.",
			"You do not have to fix the whole feeling at once to take care of yourself.",
		},
	},
	MoodFrustrated: {
		{
			"It sounds like something has really been getting under your skin.",
			"Frustration usually points at something you care about, which is worth noticing.",
			"That sounds maddening, and it is fair to feel irritated about it.",
		},
		{
			"Thanks for venting here; getting it out of your head is a useful first step.",
			"Being stuck behind things you cannot control is genuinely draining.",
			"Anger often shows up when effort and results stop lining up.",
		},
		{
			"Let us separate the part you can influence from the part you cannot.",
			"Before reacting, it can help to let the first wave of irritation pass.",
			"Frustration carries energy, and we can point some of it at one useful move.",
		},
	},
	MoodNeutral: {
		{
			"Thanks for checking in and sharing what is on your mind.",
			"It is good that you are taking a moment to reflect on how things are going.",
			"Writing things down is a simple way to see them a little more clearly.",
		},
		{
			"Taking stock like this is a healthy habit worth keeping up.",
			"Even on ordinary days, a short pause to reflect can sharpen your focus.",
			"It sounds like you have a few things in motion right now.",
		},
		{
			"Let us turn what you wrote into one or two clear next steps.",
			"A little structure can make a regular day feel calmer and more intentional.",
			"Noticing how you feel, even when it is neutral, builds useful self-awareness.",
		},
	},
}

var (
	examBodies = []string{
		"Exams and deadlines feel smaller once they are broken into pieces, so choose one topic or task and give it a single focused block.",
		"Instead of rereading everything, try short recall sessions on the weakest topic first; active practice beats marathon cramming.",
		"List each deadline with its date, then pick only the nearest one to work on today so the rest can wait without guilt.",
	}
	sleepBodies = []string{
		"Sleep is the foundation everything else rests on, so protecting even one extra hour tonight may help more than another late session.",
		"When nights are rough, a steady wind-down routine and a fixed wake time usually help more than trying to force sleep.",
		"A tired brain magnifies worries, so treat tonight's rest as part of the work rather than time taken away from it.",
	}
	teamBodies = []string{
		"Group work gets easier when roles are explicit, so a short message clarifying who owns what can lift a lot of tension.",
		"If a project feels stuck, naming the single next deliverable and its owner often gets things moving again.",
		"Friction with a team is common; a calm, specific check-in usually works better than carrying the whole load quietly.",
	}
	genericBodies = []string{
		"When everything competes for attention, narrowing your focus to one small, doable thing is often the fastest way forward.",
		"It can help to separate what truly needs doing today from what only feels urgent, then let the rest wait.",
		"Progress tends to come from small, repeatable steps, so aim for something you could finish in the next half hour.",
	}
)

var (
	sleepTips = []string{
		"Set a fixed wind-down time tonight and keep screens out of bed for the last thirty minutes.",
		"Keep tomorrow's wake-up time the same as today's, even if tonight's sleep is short.",
	}
	examTips = []string{
		"Split your study time into 25-minute blocks with 5-minute breaks, starting with the hardest topic.",
		"Write the next three deadlines on paper and circle the one that is closest.",
	}
	teamTips = []string{
		"Send your team one short message that lists who owns which task and by when.",
		"Ask for a 15-minute check-in to agree on the next deliverable before anyone continues.",
	}
	generalTips = []string{
		"Write down the one task that matters most today and start with just five minutes of it.",
		"Take a ten-minute walk or stretch break before you decide what to do next.",
		"Drink a glass of water and eat something simple before your next work block.",
		"Tell one person you trust how you are doing, even in a single sentence.",
		"Put your phone in another room for the next focused half hour.",
		"Try four slow breaths, in for four counts and out for six, before starting again.",
	}
)

var actionTemplates = []string{
	"If you try one thing today, make it this: %s",
	"A small, concrete step: %s",
	"Something worth trying next: %s",
}

// questionPools[variant] holds open-ended closing questions.
var questionPools = [][]string{
	{
		"What is one thing that would make the next hour a little easier?",
		"Which part of this feels most within your control right now?",
		"What would you tell a friend who was dealing with the same thing?",
		"What is the smallest step you could take in the next ten minutes?",
	},
	{
		"What usually helps you reset when days feel like this?",
		"Who in your life could you lean on a little this week?",
		"If today went slightly better, what would be different by tonight?",
		"What are you willing to let go of, just for today?",
	},
	{
		"Which one task, if finished, would give you the most relief?",
		"What do you need more of right now: rest, help, or a clear plan?",
		"How will you know that you have done enough for today?",
		"What has worked for you before when things felt this way?",
	},
}
