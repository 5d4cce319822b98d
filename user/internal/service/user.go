package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenbasket/grocer/internal/config"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	"github.com/greenbasket/grocer/internal/log"
	"github.com/greenbasket/grocer/internal/token"
	"github.com/greenbasket/grocer/user/internal/otel"
	"github.com/greenbasket/grocer/user/internal/repository"
	"github.com/greenbasket/grocer/user/pkg/request"
	"github.com/greenbasket/grocer/user/pkg/response"
)

type UserService struct {
	users  *repository.UserRepository
	config config.Application
}

func NewUserService(users *repository.UserRepository, config config.Application) *UserService {
	return &UserService{users: users, config: config}
}

func (u *UserService) Register(
	c context.Context,
	param request.Register,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Info().Msg("inserting user")
	user, err := u.users.Insert(c, param.Name, param.Email, string(hashed))
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("inserted user")

	return response.User{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

func (u *UserService) Login(
	c context.Context,
	param request.Login,
) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by email")
	user, err := u.users.FindByEmail(c, param.Email)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msgf("failed finding user by email=%s", param.Email)
		return response.Login{}, err
	}
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Info().Msg("verifying password")
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password))
	if err != nil {
		inErrors.HandleError(inErrors.ErrPasswordMismatch, span)
		logger.Error().Err(inErrors.ErrPasswordMismatch).Msg("password mismatch")
		return response.Login{}, inErrors.ErrPasswordMismatch
	}
	logger.Info().Msg("verified password")

	logger = logger.With().Str(log.KeyProcess, "creating login token").Logger()
	logger.Info().Msg("creating login token")
	signed, err := token.Issue(user.ID, u.config.SecretKey)
	if err != nil {
		err = fmt.Errorf("failed creating login token with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("created login token")

	return response.Login{
		Token: signed,
		User:  response.User{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}
