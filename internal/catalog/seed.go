package catalog

// SeedUsers and SeedItems are the sample data loaded by WithSeed.
var (
	SeedUsers = []User{
		{ID: 1, Name: "Иван Петров", Email: "ivan@example.com"},
		{ID: 2, Name: "Мария Смирнова", Email: "maria@example.com"},
		{ID: 3, Name: "Алексей Козлов", Email: "alexey@example.com"},
	}

	SeedItems = []Item{
		{ID: 1, Name: "Велосипед горный", Description: "Отличное состояние, 21 скорость", Available: true, OwnerID: 1},
		{ID: 2, Name: "Палатка туристическая", Description: "4-местная, водонепроницаемая", Available: true, OwnerID: 2},
		{ID: 3, Name: "Фотоаппарат Canon", Description: "Зеркальная камера с объективом", Available: false, OwnerID: 3},
		{ID: 4, Name: "Сноуборд", Description: "Размер 156см, с креплениями", Available: true, OwnerID: 1},
		{ID: 5, Name: "Швейная машинка", Description: "Электрическая, многофункциональная", Available: true, OwnerID: 2},
		{ID: 6, Name: "Дрель ударная", Description: "Мощная, с набором сверл", Available: true, OwnerID: 3},
	}
)

// nextIDAfter returns one past the largest id produced by idOf.
func nextIDAfter[T any](rows []T, idOf func(T) int64) int64 {
	var hi int64
	for _, r := range rows {
		if id := idOf(r); id > hi {
			hi = id
		}
	}
	return hi + 1
}
