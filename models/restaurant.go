package models

// Envelope is the {code, result} wrapper the restaurant backend returns for
// every response. Code 0 means success; a nil Code means the field was absent.
type Envelope[T any] struct {
	Code    *int   `json:"code"`
	Message string `json:"message,omitempty"`
	Result  T      `json:"result"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type AuthResult struct {
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type IntrospectResult struct {
	Valid bool `json:"valid"`
}

type User struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name,omitempty"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	RoleID      *int64 `json:"role_id"`
	IsActive    bool   `json:"is_active"`
}

// DisplayName prefers full_name and falls back to name.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Name
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Section struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Food struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Thumbnail   string    `json:"thumbnail"`
	BestSeller  bool      `json:"bestSeller"`
	Active      bool      `json:"active"`
	Category    *Category `json:"category,omitempty"`
}

type FoodPage struct {
	Foods      []Food `json:"foodResponseList"`
	TotalPages int    `json:"totalPages"`
}

type FoodQuery struct {
	Page       int
	Limit      int
	Keyword    string
	CategoryID *int64
	SectionID  *int64
}

type TableStatus string

const (
	TableAvailable  TableStatus = "AVAILABLE"
	TableBooked     TableStatus = "BOOKED"
	TableProcessing TableStatus = "PROCESSING"
)

type Table struct {
	ID       int64       `json:"id"`
	Name     string      `json:"table_name"`
	Capacity int         `json:"capacity"`
	Status   TableStatus `json:"table_status"`
}

type PaymentMethod struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SessionInfo describes who is signed in on a storefront session.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user,omitempty"`
	Role          string `json:"role,omitempty"`
}

// LoginBody is the storefront login form.
type LoginBody struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}
