package dto

// CreateTodoRequest is the body of POST /todos. Content is passed through
// as-is; the original service performs no validation on it and neither do we.
type CreateTodoRequest struct {
	Content string `json:"content"`
}

type TodoResponse struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}
