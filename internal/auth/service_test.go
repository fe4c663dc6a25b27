package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users         map[string]string // email -> password hash
	userIDs       map[string]string // email -> userID
	usersByID     map[int64]*User   // userID -> User with permissions
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		users: map[string]string{
			"employee@example.com": string(hashedPassword),
			"admin@example.com":    string(hashedPassword),
		},
		userIDs: map[string]string{
			"employee@example.com": "1",
			"admin@example.com":    "2",
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Email: "employee@example.com", Permissions: []string{}},
			2: {ID: 2, Email: "admin@example.com", Permissions: []string{
				PermissionAdmin, PermissionApproveTimesheets, PermissionRejectTimesheets,
			}},
		},
	}
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, string, error) {
	if m.returnError {
		return "", "", m.errorToReturn
	}

	if hash, exists := m.users[email]; exists {
		if userID, userExists := m.userIDs[email]; userExists {
			return hash, userID, nil
		}
	}
	return "", "", errors.New("user not found")
}

func (m *mockUserRepository) GetUserWithPermissions(userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("with valid credentials", func() {
			ginkgo.It("should return a token pair", func() {
				// When
				tokens, err := service.Authenticate(LoginDTO{
					Email:    "employee@example.com",
					Password: "correct_password",
				})

				// Then
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())

				claims, err := tokenGen.ValidateToken(tokens.AccessToken)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("1"))
			})
		})

		ginkgo.Context("with a wrong password", func() {
			ginkgo.It("should return invalid credentials", func() {
				// When
				_, err := service.Authenticate(LoginDTO{
					Email:    "employee@example.com",
					Password: "wrong_password",
				})

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})

		ginkgo.Context("with an unknown email", func() {
			ginkgo.It("should return invalid credentials, not a lookup error", func() {
				// When
				_, err := service.Authenticate(LoginDTO{
					Email:    "nobody@example.com",
					Password: "correct_password",
				})

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})

		ginkgo.Context("with a missing field", func() {
			ginkgo.It("should return a validation error", func() {
				// When
				_, err := service.Authenticate(LoginDTO{Email: "employee@example.com"})

				// Then
				var vErr ValidationError
				gomega.Expect(errors.As(err, &vErr)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("should mask the failure as invalid credentials", func() {
				// Given
				mockRepo.setError(errors.New("db down"))

				// When
				_, err := service.Authenticate(LoginDTO{
					Email:    "employee@example.com",
					Password: "correct_password",
				})

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should issue a new pair for a valid refresh token", func() {
			// Given
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "employee@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When
			refreshed, err := service.RefreshTokens(tokens.RefreshToken)

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).NotTo(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(refreshed.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("1"))
		})

		ginkgo.It("should reject a malformed token", func() {
			// When
			_, err := service.RefreshTokens("not-a-jwt")

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})

		ginkgo.It("should reject an expired token", func() {
			// Given a generator whose tokens are already expired
			expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -time.Minute, -time.Minute)
			expired, err := expiredGen.GenerateRefreshToken("1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When
			_, err = service.RefreshTokens(expired)

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should reject a token signed with a different secret", func() {
			// Given
			otherGen := NewJWTTokenGenerator("other-secret", "other-refresh", accessTTL, refreshTTL)
			token, err := otherGen.GenerateAccessToken("1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When
			_, err = service.ValidateAccessToken(token)

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})

	ginkgo.Describe("GetUserWithPermissions", func() {
		ginkgo.It("should return the principal with its permissions", func() {
			// When
			user, err := service.GetUserWithPermissions(2)

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.IsAdmin()).To(gomega.BeTrue())
			gomega.Expect(user.HasPermission(PermissionApproveTimesheets)).To(gomega.BeTrue())
		})

		ginkgo.It("should report a plain employee as non-admin", func() {
			// When
			user, err := service.GetUserWithPermissions(1)

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.IsAdmin()).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a hash that verifies against the input", func() {
			// When
			hash, err := service.HashPassword("s3cret")

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("ParseUserID", func() {
		ginkgo.It("should convert the string subject back to a numeric id", func() {
			claims := &Claims{UserID: "42"}

			id, err := ParseUserID(claims)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal(int64(42)))
		})
	})
})
