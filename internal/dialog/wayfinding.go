// internal/dialog/wayfinding.go
package dialog

// Direction is a location category and the sentence describing how to get there.
type Direction struct {
	Category string
	Sentence string
}

// Directions is ordered: replies list sentences in this order, not in entity order.
var Directions = []Direction{
	{"swimming_pool", "Пройдите прямо"},
	{"music_room", "Поднимитесь на второй этаж и пройдите налево, вторая дверь"},
	{"teaching_room", "Поднимитесь на второй этаж и пройдите налево до конца коридора, третья дверь после групп"},
	{"laundry", "Пройдите налево по коридору, третья дверь"},
	{"medical_office", "Пройдите налево по коридору, четвертая дверь"},
	{"HR", "Поднимитесь на второй этаж и пройдите налево до конца коридора, первая дверь после групп"},
	{"accounting", "Поднимитесь на второй этаж и пройдите налево до конца коридора, четвертая дверь после групп"},
	{"food_block", "Пройдите налево до железной двери и поверните направо перед ней"},
	{"manager", "Поднимитесь на второй этаж и пройдите налево до конца коридора, вторая дверь после групп"},
	{"gym", "Поднимитесь на второй этаж и пройдите налево, первая дверь"},
	{"group_1", "Пройдите направо по коридору, первая дверь"},
	{"group_2", "Пройдите направо по коридору, вторая дверь"},
	{"group_3", "Пройдите направо по коридору, третья дверь"},
	{"group_4", "Пройдите направо по коридору, четвертая дверь"},
	{"group_5", "Пройдите налево по коридору, первая дверь"},
	{"group_6", "Пройдите налево по коридору, вторая дверь"},
	{"group_7", "Поднимитесь на второй этаж и пройдите направо, первая дверь"},
	{"group_8", "Поднимитесь на второй этаж и пройдите направо, вторая дверь"},
	{"group_9", "Поднимитесь на второй этаж и пройдите направо, третья дверь"},
	{"group_10", "Поднимитесь на второй этаж и пройдите направо, четвертая дверь"},
	{"group_11", "Поднимитесь на второй этаж и пройдите налево, первая дверь"},
	{"group_12", "Поднимитесь на второй этаж и пройдите налево, вторая дверь"},
}
