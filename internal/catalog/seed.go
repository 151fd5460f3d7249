package catalog

// Seed scenario catalog for the Mandarin/English tutor. Difficulty runs
// 1-5; bracket sets widen as vocabulary carries across class levels.

var allBrackets = AllBrackets()

var youngBrackets = []AgeBracket{
	BracketJuniorInfants, BracketSeniorInfants, BracketFirstClass, BracketSecondClass,
}

var olderBrackets = []AgeBracket{
	BracketFirstClass, BracketSecondClass, BracketThirdClass, BracketFourthClass,
}

var oldestBrackets = []AgeBracket{BracketThirdClass, BracketFourthClass}

var seedItems = []ContentItem{
	{
		ID:          "greet-hello",
		Name:        "Saying Hello",
		NameZh:      "打招呼",
		Description: "Greeting a friend with ni hao and hello.",
		Category:    CategoryGreetings,
		Difficulty:  1,
		Brackets:    allBrackets,
		Keywords:    []string{"hello", "ni hao", "wave"},
	},
	{
		ID:          "greet-name",
		Name:        "What's Your Name?",
		NameZh:      "你叫什么名字",
		Description: "Asking and giving a name.",
		Category:    CategoryGreetings,
		Difficulty:  1,
		Brackets:    allBrackets,
		Keywords:    []string{"name", "introduce"},
	},
	{
		ID:          "greet-howareyou",
		Name:        "How Are You?",
		NameZh:      "你好吗",
		Description: "A short well-being exchange.",
		Category:    CategoryGreetings,
		Difficulty:  2,
		Brackets:    allBrackets,
		Keywords:    []string{"feelings", "polite"},
	},
	{
		ID:          "family-members",
		Name:        "My Family",
		NameZh:      "我的家人",
		Description: "Naming mum, dad, brothers and sisters.",
		Category:    CategoryFamily,
		Difficulty:  1,
		Brackets:    youngBrackets,
		Keywords:    []string{"mama", "baba", "family"},
	},
	{
		ID:          "family-grandparents",
		Name:        "Visiting Grandparents",
		NameZh:      "看望爷爷奶奶",
		Description: "Talking about a visit to grandparents.",
		Category:    CategoryFamily,
		Difficulty:  3,
		Brackets:    olderBrackets,
		Keywords:    []string{"grandma", "grandpa", "visit"},
	},
	{
		ID:          "food-fruit",
		Name:        "Favourite Fruit",
		NameZh:      "最喜欢的水果",
		Description: "Naming fruits and saying which one you like.",
		Category:    CategoryFood,
		Difficulty:  1,
		Brackets:    youngBrackets,
		Keywords:    []string{"apple", "banana", "like"},
	},
	{
		ID:          "food-breakfast",
		Name:        "Breakfast Time",
		NameZh:      "吃早餐",
		Description: "What did you eat this morning?",
		Category:    CategoryFood,
		Difficulty:  2,
		Brackets:    allBrackets,
		Keywords:    []string{"breakfast", "eat", "drink"},
	},
	{
		ID:          "food-restaurant",
		Name:        "Ordering at a Restaurant",
		NameZh:      "在餐厅点菜",
		Description: "Politely ordering a dish and a drink.",
		Category:    CategoryFood,
		Difficulty:  3,
		Brackets:    olderBrackets,
		Keywords:    []string{"order", "menu", "please"},
	},
	{
		ID:          "food-dumplings",
		Name:        "Making Dumplings",
		NameZh:      "包饺子",
		Description: "Helping to make jiaozi for a family dinner.",
		Category:    CategoryFood,
		Difficulty:  4,
		Brackets:    oldestBrackets,
		Keywords:    []string{"jiaozi", "cook", "family"},
	},
	{
		ID:          "school-classroom",
		Name:        "In the Classroom",
		NameZh:      "在教室里",
		Description: "Naming classroom objects and simple requests.",
		Category:    CategorySchool,
		Difficulty:  2,
		Brackets:    allBrackets,
		Keywords:    []string{"book", "pencil", "teacher"},
	},
	{
		ID:          "school-subjects",
		Name:        "My Favourite Subject",
		NameZh:      "最喜欢的科目",
		Description: "Talking about subjects and why you like them.",
		Category:    CategorySchool,
		Difficulty:  3,
		Brackets:    olderBrackets,
		Keywords:    []string{"subject", "maths", "art"},
	},
	{
		ID:          "school-show-tell",
		Name:        "Show and Tell",
		NameZh:      "展示与讲述",
		Description: "Presenting a favourite object to the class.",
		Category:    CategorySchool,
		Difficulty:  4,
		Brackets:    oldestBrackets,
		Keywords:    []string{"present", "describe", "favourite"},
	},
	{
		ID:          "play-playground",
		Name:        "At the Playground",
		NameZh:      "在操场上",
		Description: "Inviting a friend to play.",
		Category:    CategoryPlay,
		Difficulty:  1,
		Brackets:    youngBrackets,
		Keywords:    []string{"play", "swing", "friend"},
	},
	{
		ID:          "play-colours",
		Name:        "Colours and Toys",
		NameZh:      "颜色和玩具",
		Description: "Naming toy colours during play.",
		Category:    CategoryPlay,
		Difficulty:  2,
		Brackets:    youngBrackets,
		Keywords:    []string{"red", "blue", "toy"},
	},
	{
		ID:          "play-games",
		Name:        "Playing a Board Game",
		NameZh:      "玩棋盘游戏",
		Description: "Taking turns and counting moves.",
		Category:    CategoryPlay,
		Difficulty:  3,
		Brackets:    olderBrackets,
		Keywords:    []string{"turn", "count", "win"},
	},
	{
		ID:          "feelings-happy-sad",
		Name:        "Happy or Sad",
		NameZh:      "开心还是难过",
		Description: "Expressing simple feelings.",
		Category:    CategoryFeelings,
		Difficulty:  2,
		Brackets:    allBrackets,
		Keywords:    []string{"happy", "sad", "feel"},
	},
	{
		ID:          "feelings-helping",
		Name:        "Helping a Friend",
		NameZh:      "帮助朋友",
		Description: "Noticing a friend is upset and offering help.",
		Category:    CategoryFeelings,
		Difficulty:  4,
		Brackets:    oldestBrackets,
		Keywords:    []string{"help", "kind", "friend"},
	},
	{
		ID:          "culture-newyear",
		Name:        "Chinese New Year",
		NameZh:      "春节",
		Description: "Spring Festival greetings and red envelopes.",
		Category:    CategoryCulture,
		Difficulty:  3,
		Brackets:    olderBrackets,
		Keywords:    []string{"xin nian", "hongbao", "festival"},
	},
	{
		ID:          "culture-moonfest",
		Name:        "Mid-Autumn Festival",
		NameZh:      "中秋节",
		Description: "Mooncakes, lanterns and the moon story.",
		Category:    CategoryCulture,
		Difficulty:  5,
		Brackets:    []AgeBracket{BracketFourthClass},
		Keywords:    []string{"mooncake", "lantern", "story"},
	},
}

// Default returns the built-in scenario catalog.
func Default() *Catalog {
	return New(seedItems)
}
