package borrowing

// 事件名同时作为RabbitMQ的routing key
const (
	EventBookBorrowed = "borrowing.borrowed"
	EventBookReturned = "borrowing.returned"
)

// BookBorrowed 借书成功事件（事务提交后发布）
// 值类型，携带已解析的用户名和书名，订阅者无需再查库
type BookBorrowed struct {
	Borrowing Borrowing `json:"borrowing"`
	UserName  string    `json:"user_name"`
	BookTitle string    `json:"book_title"`
}

func (BookBorrowed) EventName() string { return EventBookBorrowed }

// BookReturned 还书成功事件
type BookReturned struct {
	Borrowing Borrowing `json:"borrowing"`
	UserName  string    `json:"user_name"`
	BookTitle string    `json:"book_title"`
}

func (BookReturned) EventName() string { return EventBookReturned }
