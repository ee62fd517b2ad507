package service

// Wire messages for the wallet services. Money travels as decimal strings
// so clients never round through floating point.

// User is the public view of an account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Person is the public view of a tracked person.
type Person struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DailyWage    string `json:"dailyWage"`
	Balance      string `json:"balance"`
	LastWageDate string `json:"lastWageDate,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// Transaction is the public view of a ledger entry.
type Transaction struct {
	ID          int64  `json:"id"`
	PersonID    int64  `json:"personId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	// CreatedAt is in Unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
	Active    bool  `json:"active"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type MeRequest struct{}

type MeResponse struct {
	User User `json:"user"`
}

type ListPersonsRequest struct{}

type ListPersonsResponse struct {
	Persons []Person `json:"persons"`
	// Total is the sum of all balances.
	Total string `json:"total"`
}

type CreatePersonRequest struct {
	Name string `json:"name"`
	// DailyWage defaults to zero.
	DailyWage string `json:"dailyWage,omitempty"`
}

type UpdatePersonRequest struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	DailyWage *string `json:"dailyWage,omitempty"`
}

type PersonResponse struct {
	Person Person `json:"person"`
}

type DeletePersonRequest struct {
	ID int64 `json:"id"`
}

type DeletePersonResponse struct{}

type AdjustRequest struct {
	PersonID int64 `json:"personId"`
	// Type is "add" or "subtract".
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type ClearRequest struct {
	PersonID    int64  `json:"personId"`
	Description string `json:"description,omitempty"`
}

type UndoRequest struct {
	PersonID int64 `json:"personId"`
}

type RedoRequest struct {
	PersonID int64 `json:"personId"`
}

// LedgerResponse is returned by every ledger mutation.
type LedgerResponse struct {
	PersonID    int64       `json:"personId"`
	Transaction Transaction `json:"transaction"`
	Balance     string      `json:"balance"`
}

type ListTransactionsRequest struct {
	PersonID int64 `json:"personId"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	CanUndo      bool          `json:"canUndo"`
	CanRedo      bool          `json:"canRedo"`
}

type ListAccountTransactionsRequest struct{}

type ListAccountTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	HasUndone    bool          `json:"hasUndone"`
}

type CheckWagesRequest struct{}

type WagePayment struct {
	PersonID int64  `json:"personId"`
	Days     int    `json:"days"`
	Amount   string `json:"amount"`
}

type CheckWagesResponse struct {
	Today    string        `json:"today"`
	Payments []WagePayment `json:"payments"`
}

type VerifyBalanceRequest struct {
	PersonID int64 `json:"personId"`
}

type VerifyBalanceResponse struct {
	PersonID   int64  `json:"personId"`
	Cached     string `json:"cached"`
	Replayed   string `json:"replayed"`
	Consistent bool   `json:"consistent"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type ResetPasswordRequest struct {
	UserID int64 `json:"userId"`
}

type ResetPasswordResponse struct {
	NewPassword string `json:"newPassword"`
}

type DeleteUserRequest struct {
	UserID int64 `json:"userId"`
}

type DeleteUserResponse struct{}
