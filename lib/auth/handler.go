package authhandler

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"vessel-works-backend/db"
	userstore "vessel-works-backend/lib/auth/user-store"
	authutils "vessel-works-backend/lib/utils/auth-utils"
	"vessel-works-backend/models"
	authapimodels "vessel-works-backend/models/api/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Provider interface {
	Login(email, password string) (authapimodels.JWTResponse, error)
	Refresh(refreshToken string) (authapimodels.JWTResponse, error)
	Me(userID string) (authapimodels.UserView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		userStore: userstore.NewInstance(db.DB),
	}
}

func NewHandlerWithStore(userStore userstore.Provider) Provider {
	return impl{
		userStore: userStore,
	}
}

type impl struct {
	userStore userstore.Provider
}

func (i impl) Login(email, password string) (authapimodels.JWTResponse, error) {
	logger := log.WithField("email", email)
	user, err := i.userStore.GetByEmail(email)
	if err != nil {
		logger.WithError(err).Error("failed to load user")
		return authapimodels.JWTResponse{}, err
	}
	if user == nil {
		return authapimodels.JWTResponse{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return authapimodels.JWTResponse{}, ErrInvalidCredentials
	}
	return i.issueTokens(user.ID, user.GetFullName(), user.OrganisationID, user.Role)
}

func (i impl) Refresh(refreshToken string) (authapimodels.JWTResponse, error) {
	claims, err := authutils.ParseToken(refreshToken)
	if err != nil {
		return authapimodels.JWTResponse{}, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return authapimodels.JWTResponse{}, ErrInvalidCredentials
	}
	user, err := i.userStore.GetByID(sub)
	if err != nil {
		return authapimodels.JWTResponse{}, err
	}
	if user == nil || !user.IsActive {
		return authapimodels.JWTResponse{}, ErrInvalidCredentials
	}
	return i.issueTokens(user.ID, user.GetFullName(), user.OrganisationID, user.Role)
}

func (i impl) issueTokens(userID, name, organisationID string, role models.UserRole) (authapimodels.JWTResponse, error) {
	accessToken, err := authutils.GetToken(userID, name, organisationID, role)
	if err != nil {
		return authapimodels.JWTResponse{}, errors.Wrap(err, "failed to sign access token")
	}
	refreshToken, err := authutils.GetRefreshToken(userID, name)
	if err != nil {
		return authapimodels.JWTResponse{}, errors.Wrap(err, "failed to sign refresh token")
	}
	return authapimodels.JWTResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (i impl) Me(userID string) (authapimodels.UserView, error) {
	user, err := i.userStore.GetByID(userID)
	if err != nil {
		return authapimodels.UserView{}, err
	}
	if user == nil {
		return authapimodels.UserView{}, errors.New("user not found")
	}
	return authapimodels.UserView{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		RoleName:       user.Role.ToHuman(),
		OrganisationID: user.OrganisationID,
	}, nil
}
