package contextkeys

type contextKey string

// UserIDKey - ключ, под которым middleware кладёт ID действующего пользователя.
const UserIDKey contextKey = "userID"
