package users_services

var authService *AuthService

func Setup(jwtSecret string) {
	authService = NewAuthService(jwtSecret)
}

func GetAuthService() *AuthService {
	return authService
}
