package books

// kjvBooks is the Protestant canon in canonical order with the heading lines
// used by the Project Gutenberg KJV edition.
var kjvBooks = []Book{
	// Pentateuch
	{Code: "gen", Name: "Genesis", NameKO: "창세기", Headings: []string{"The First Book of Moses: Called Genesis"}},
	{Code: "exo", Name: "Exodus", NameKO: "출애굽기", Headings: []string{"The Second Book of Moses: Called Exodus"}},
	{Code: "lev", Name: "Leviticus", NameKO: "레위기", Headings: []string{"The Third Book of Moses: Called Leviticus"}},
	{Code: "num", Name: "Numbers", NameKO: "민수기", Headings: []string{"The Fourth Book of Moses: Called Numbers"}},
	{Code: "deu", Name: "Deuteronomy", NameKO: "신명기", Headings: []string{"The Fifth Book of Moses: Called Deuteronomy"}},

	// History
	{Code: "jos", Name: "Joshua", NameKO: "여호수아", Headings: []string{"The Book of Joshua"}},
	{Code: "jdg", Name: "Judges", NameKO: "사사기", Headings: []string{"The Book of Judges"}},
	{Code: "rut", Name: "Ruth", NameKO: "룻기", Headings: []string{"The Book of Ruth"}},
	{Code: "1sa", Name: "1 Samuel", NameKO: "사무엘상", Headings: []string{"The First Book of Samuel"}},
	{Code: "2sa", Name: "2 Samuel", NameKO: "사무엘하", Headings: []string{"The Second Book of Samuel"}},
	{Code: "1ki", Name: "1 Kings", NameKO: "열왕기상", Headings: []string{"The First Book of the Kings", "The Third Book of the Kings"}},
	{Code: "2ki", Name: "2 Kings", NameKO: "열왕기하", Headings: []string{"The Second Book of the Kings", "The Fourth Book of the Kings"}},
	{Code: "1ch", Name: "1 Chronicles", NameKO: "역대상", Headings: []string{"The First Book of the Chronicles"}},
	{Code: "2ch", Name: "2 Chronicles", NameKO: "역대하", Headings: []string{"The Second Book of the Chronicles"}},
	{Code: "ezr", Name: "Ezra", NameKO: "에스라", Headings: []string{"Ezra", "The Book of Ezra"}},
	{Code: "neh", Name: "Nehemiah", NameKO: "느헤미야", Headings: []string{"The Book of Nehemiah"}},
	{Code: "est", Name: "Esther", NameKO: "에스더", Headings: []string{"The Book of Esther"}},

	// Wisdom and poetry
	{Code: "job", Name: "Job", NameKO: "욥기", Headings: []string{"The Book of Job"}},
	{Code: "psa", Name: "Psalms", NameKO: "시편", UnitKO: "편", Headings: []string{"The Book of Psalms"}},
	{Code: "pro", Name: "Proverbs", NameKO: "잠언", Headings: []string{"The Proverbs"}},
	{Code: "ecc", Name: "Ecclesiastes", NameKO: "전도서", Headings: []string{"Ecclesiastes"}},
	{Code: "sng", Name: "Song of Solomon", NameKO: "아가", Headings: []string{"The Song of Solomon"}},

	// Major prophets
	{Code: "isa", Name: "Isaiah", NameKO: "이사야", Headings: []string{"The Book of the Prophet Isaiah"}},
	{Code: "jer", Name: "Jeremiah", NameKO: "예레미야", Headings: []string{"The Book of the Prophet Jeremiah"}},
	{Code: "lam", Name: "Lamentations", NameKO: "예레미야애가", Headings: []string{"The Lamentations of Jeremiah"}},
	{Code: "ezk", Name: "Ezekiel", NameKO: "에스겔", Headings: []string{"The Book of the Prophet Ezekiel"}},
	{Code: "dan", Name: "Daniel", NameKO: "다니엘", Headings: []string{"The Book of Daniel"}},

	// Minor prophets
	{Code: "hos", Name: "Hosea", NameKO: "호세아", Headings: []string{"Hosea"}},
	{Code: "jol", Name: "Joel", NameKO: "요엘", Headings: []string{"Joel"}},
	{Code: "amo", Name: "Amos", NameKO: "아모스", Headings: []string{"Amos"}},
	{Code: "oba", Name: "Obadiah", NameKO: "오바댜", Headings: []string{"Obadiah"}},
	{Code: "jon", Name: "Jonah", NameKO: "요나", Headings: []string{"Jonah"}},
	{Code: "mic", Name: "Micah", NameKO: "미가", Headings: []string{"Micah"}},
	{Code: "nah", Name: "Nahum", NameKO: "나훔", Headings: []string{"Nahum"}},
	{Code: "hab", Name: "Habakkuk", NameKO: "하박국", Headings: []string{"Habakkuk"}},
	{Code: "zep", Name: "Zephaniah", NameKO: "스바냐", Headings: []string{"Zephaniah"}},
	{Code: "hag", Name: "Haggai", NameKO: "학개", Headings: []string{"Haggai"}},
	{Code: "zec", Name: "Zechariah", NameKO: "스가랴", Headings: []string{"Zechariah"}},
	{Code: "mal", Name: "Malachi", NameKO: "말라기", Headings: []string{"Malachi"}},

	// Gospels and Acts
	{Code: "mat", Name: "Matthew", NameKO: "마태복음", Headings: []string{"The Gospel According to Saint Matthew"}},
	{Code: "mrk", Name: "Mark", NameKO: "마가복음", Headings: []string{"The Gospel According to Saint Mark"}},
	{Code: "luk", Name: "Luke", NameKO: "누가복음", Headings: []string{"The Gospel According to Saint Luke"}},
	{Code: "jhn", Name: "John", NameKO: "요한복음", Headings: []string{"The Gospel According to Saint John"}},
	{Code: "act", Name: "Acts", NameKO: "사도행전", Headings: []string{"The Acts of the Apostles"}},

	// Epistles
	{Code: "rom", Name: "Romans", NameKO: "로마서", Headings: []string{"The Epistle of Paul the Apostle to the Romans"}},
	{Code: "1co", Name: "1 Corinthians", NameKO: "고린도전서", Headings: []string{"The First Epistle of Paul the Apostle to the Corinthians"}},
	{Code: "2co", Name: "2 Corinthians", NameKO: "고린도후서", Headings: []string{"The Second Epistle of Paul the Apostle to the Corinthians"}},
	{Code: "gal", Name: "Galatians", NameKO: "갈라디아서", Headings: []string{"The Epistle of Paul the Apostle to the Galatians"}},
	{Code: "eph", Name: "Ephesians", NameKO: "에베소서", Headings: []string{"The Epistle of Paul the Apostle to the Ephesians"}},
	{Code: "php", Name: "Philippians", NameKO: "빌립보서", Headings: []string{"The Epistle of Paul the Apostle to the Philippians"}},
	{Code: "col", Name: "Colossians", NameKO: "골로새서", Headings: []string{"The Epistle of Paul the Apostle to the Colossians"}},
	{Code: "1th", Name: "1 Thessalonians", NameKO: "데살로니가전서", Headings: []string{"The First Epistle of Paul the Apostle to the Thessalonians"}},
	{Code: "2th", Name: "2 Thessalonians", NameKO: "데살로니가후서", Headings: []string{"The Second Epistle of Paul the Apostle to the Thessalonians"}},
	{Code: "1ti", Name: "1 Timothy", NameKO: "디모데전서", Headings: []string{"The First Epistle of Paul the Apostle to Timothy"}},
	{Code: "2ti", Name: "2 Timothy", NameKO: "디모데후서", Headings: []string{"The Second Epistle of Paul the Apostle to Timothy"}},
	{Code: "tit", Name: "Titus", NameKO: "디도서", Headings: []string{"The Epistle of Paul the Apostle to Titus"}},
	{Code: "phm", Name: "Philemon", NameKO: "빌레몬서", Headings: []string{"The Epistle of Paul the Apostle to Philemon"}},
	{Code: "heb", Name: "Hebrews", NameKO: "히브리서", Headings: []string{"The Epistle of Paul the Apostle to the Hebrews"}},
	{Code: "jas", Name: "James", NameKO: "야고보서", Headings: []string{"The General Epistle of James"}},
	{Code: "1pe", Name: "1 Peter", NameKO: "베드로전서", Headings: []string{"The First Epistle General of Peter"}},
	{Code: "2pe", Name: "2 Peter", NameKO: "베드로후서", Headings: []string{"The Second Epistle General of Peter", "The Second General Epistle of Peter"}},
	{Code: "1jn", Name: "1 John", NameKO: "요한일서", Headings: []string{"The First Epistle General of John"}},
	{Code: "2jn", Name: "2 John", NameKO: "요한이서", Headings: []string{"The Second Epistle General of John"}},
	{Code: "3jn", Name: "3 John", NameKO: "요한삼서", Headings: []string{"The Third Epistle General of John"}},
	{Code: "jud", Name: "Jude", NameKO: "유다서", Headings: []string{"The General Epistle of Jude"}},

	// Revelation
	{Code: "rev", Name: "Revelation", NameKO: "요한계시록", Headings: []string{"The Revelation of Saint John the Divine"}},
}

// Default returns the built-in 66-book KJV table.
func Default() *Table {
	return NewTable(kjvBooks)
}
