package config

// DefaultTemplates 内置的问题模板
func DefaultTemplates() []QuestionTemplate {
	return []QuestionTemplate{
		{Name: "プログラミング学習の最適な始め方", Text: "プログラミング学習を始めるための最適な方法や言語について教えてください。全くの初心者です。"},
		{Name: "Pythonデータ分析入門ロードマップ", Text: "Pythonを使ってデータ分析を始めるための学習ロードマップと、役立つライブラリについて教えてください。"},
		{Name: "Webデザイナー向けポートフォリオ例", Text: "Webデザイナー志望のポートフォリオサイトに含めるべき要素と、参考になるデザイン例を教えてください。"},
		{Name: "オンラインストア開設とプラットフォーム", Text: "オンラインストアを立ち上げるための具体的な手順と、おすすめのEコマースプラットフォームを教えてください。販売する商品は手作りのアクセサリーです。"},
		{Name: "効率的な部屋の片付けステップ", Text: "散らかった部屋を効率的に片付けるためのステップと、きれいを保つコツを教えてください。"},
		{Name: "日常生活で実践できる節約術", Text: "日常生活で無理なくできる節約術をいくつか教えてください。食費と光熱費を抑えたいです。"},
		{Name: "一人暮らしの防災グッズと使い方", Text: "一人暮らしの防災対策として、最低限揃えておくべき防災グッズと、その使い方を教えてください。"},
		{Name: "安眠に繋がる習慣と睡眠の質改善", Text: "夜なかなか寝付けないので、安眠に繋がる習慣や、寝る前に避けるべきことを教えてください。"},
		{Name: "効果的な英語リスニング学習法", Text: "英語のリスニング力を向上させたいです。効果的な学習方法や、おすすめのアプリ、教材があれば教えてください。"},
		{Name: "週末を充実させる気分転換アイデア", Text: "家で過ごす週末で、気分転換になるようなクリエイティブな趣味や、リラックスできる過ごし方を教えてください。"},
		{Name: "不用品を賢くお得に処分する方法", Text: "使わなくなった家具や家電を、お得に、または環境に優しく処分する方法について教えてください。"},
		{Name: "スマホを減らすデジタルデトックス", Text: "スマートフォンの使用時間を減らして、デジタルデトックスを始めるための具体的な方法を教えてください。"},
	}
}
