package service

import (
	"errors"
	"formflow_backend/internal/config"
	"formflow_backend/internal/model"
	"formflow_backend/internal/repository"
	"formflow_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if user.Disabled {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	_ = s.UserRepo.UpdateLastLogin(user.ID)

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// CanViewSubmissions 提交列表/导出的授权口径：管理员全可见，
// 编辑只看自己拥有的页面
func (s *AuthService) CanViewSubmissions(claims *util.Claims, page *model.FormPage) bool {
	if claims == nil {
		return false
	}
	if claims.Role == model.Admin {
		return true
	}
	return page.OwnerID == claims.UserID
}

// CanDeleteSubmissions 删除提交的授权口径，目前与查看一致
func (s *AuthService) CanDeleteSubmissions(claims *util.Claims, page *model.FormPage) bool {
	return s.CanViewSubmissions(claims, page)
}
