package domain

import "strconv"

// Domain entity: бизнес-объект (истина).
// Не зависит от Gin и Redis.
type TodoItem struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// TodoList is one user's collection. Items is keyed by the item id in
// decimal string form; LastInsertedID is the highest id handed out so far
// and never decreases, even after deletes.
type TodoList struct {
	Items          map[string]TodoItem `json:"items"`
	LastInsertedID int                 `json:"lastInsertedID"`
}

// DefaultTodoList returns the seed collection every user starts with.
func DefaultTodoList() TodoList {
	return TodoList{
		Items: map[string]TodoItem{
			"1": {ID: 1, Content: "Create new todo"},
			"2": {ID: 2, Content: "Update me"},
			"3": {ID: 3, Content: "Delete example ones"},
		},
		LastInsertedID: 3,
	}
}

// ItemKey returns the Items key for an item id.
func ItemKey(id int) string {
	return strconv.Itoa(id)
}
