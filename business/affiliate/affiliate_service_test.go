//go:build !integration

package affiliate

import (
	"context"
	"myBetPartners/domain"
	"myBetPartners/pkg/utils"
	"testing"

	"github.com/go-playground/validator/v10"
)

type fakeAffiliateRepo struct {
	byCode map[string]domain.Affiliate
	nextID uint
}

func newFakeAffiliateRepo() *fakeAffiliateRepo {
	return &fakeAffiliateRepo{byCode: map[string]domain.Affiliate{}, nextID: 1}
}

func (f *fakeAffiliateRepo) Create(_ context.Context, affiliate *domain.Affiliate) error {
	affiliate.ID = f.nextID
	f.nextID++
	f.byCode[affiliate.TrackingCode] = *affiliate
	return nil
}

func (f *fakeAffiliateRepo) FindByTrackingCode(_ context.Context, code string) (domain.Affiliate, error) {
	affiliate, ok := f.byCode[code]
	if !ok {
		return domain.Affiliate{}, domain.ErrAffiliateNotFound
	}
	return affiliate, nil
}

func (f *fakeAffiliateRepo) FindByID(_ context.Context, id uint) (domain.Affiliate, error) {
	for _, affiliate := range f.byCode {
		if affiliate.ID == id {
			return affiliate, nil
		}
	}
	return domain.Affiliate{}, domain.ErrAffiliateNotFound
}

func (f *fakeAffiliateRepo) FindByEmail(_ context.Context, email string) (domain.Affiliate, error) {
	for _, affiliate := range f.byCode {
		if affiliate.Email == email {
			return affiliate, nil
		}
	}
	return domain.Affiliate{}, domain.ErrAffiliateNotFound
}

func (f *fakeAffiliateRepo) UpdatePostbackURL(_ context.Context, id uint, url string) error {
	for code, affiliate := range f.byCode {
		if affiliate.ID == id {
			affiliate.PostbackURL = url
			f.byCode[code] = affiliate
			return nil
		}
	}
	return domain.ErrAffiliateNotFound
}

func TestRegisterAndResolve(t *testing.T) {
	s := NewAffiliateService(newFakeAffiliateRepo(), validator.New())

	created, err := s.Register(context.Background(), &domain.Affiliate{
		TrackingCode: "joao123",
		Email:        "joao@example.com",
		Password:     "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if created.Password == "hunter22" {
		t.Errorf("password stored in cleartext")
	}
	if created.Role != RoleAffiliate {
		t.Errorf("role = %q", created.Role)
	}

	resolved, err := s.ResolveByTrackingCode(context.Background(), "joao123")
	if err != nil {
		t.Fatalf("ResolveByTrackingCode: %v", err)
	}
	if resolved.ID != created.ID {
		t.Errorf("resolved id = %d, want %d", resolved.ID, created.ID)
	}

	// resolving twice is side-effect free and stable
	again, err := s.ResolveByTrackingCode(context.Background(), "joao123")
	if err != nil || again.ID != resolved.ID {
		t.Errorf("second resolve = %+v, %v", again, err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	s := NewAffiliateService(newFakeAffiliateRepo(), validator.New())

	tests := []struct {
		name      string
		affiliate domain.Affiliate
	}{
		{"bad email", domain.Affiliate{TrackingCode: "joao123", Email: "nope", Password: "hunter22"}},
		{"short password", domain.Affiliate{TrackingCode: "joao123", Email: "a@b.com", Password: "abc"}},
		{"short tracking code", domain.Affiliate{TrackingCode: "jo", Email: "a@b.com", Password: "hunter22"}},
		{"tracking code with spaces", domain.Affiliate{TrackingCode: "joao 123", Email: "a@b.com", Password: "hunter22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			affiliate := tt.affiliate
			if _, err := s.Register(context.Background(), &affiliate); err == nil {
				t.Errorf("Register accepted bad input")
			}
		})
	}
}

func TestRegisterRejectsDuplicateTrackingCode(t *testing.T) {
	s := NewAffiliateService(newFakeAffiliateRepo(), validator.New())

	first := domain.Affiliate{TrackingCode: "joao123", Email: "a@b.com", Password: "hunter22"}
	if _, err := s.Register(context.Background(), &first); err != nil {
		t.Fatalf("Register: %v", err)
	}

	second := domain.Affiliate{TrackingCode: "joao123", Email: "c@d.com", Password: "hunter22"}
	if _, err := s.Register(context.Background(), &second); err == nil {
		t.Errorf("duplicate tracking code must be rejected")
	}
}

func TestResolveUnknownCode(t *testing.T) {
	s := NewAffiliateService(newFakeAffiliateRepo(), validator.New())

	if _, err := s.ResolveByTrackingCode(context.Background(), "ghost"); err != domain.ErrAffiliateNotFound {
		t.Errorf("err = %v, want ErrAffiliateNotFound", err)
	}
}

func TestLogin(t *testing.T) {
	utils.InitJWT("test-secret")

	s := NewAffiliateService(newFakeAffiliateRepo(), validator.New())

	if _, err := s.Register(context.Background(), &domain.Affiliate{
		TrackingCode: "joao123",
		Email:        "joao@example.com",
		Password:     "hunter22",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, affiliate, err := s.Login(context.Background(), "joao@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || affiliate.TrackingCode != "joao123" {
		t.Errorf("login result = %q, %+v", token, affiliate)
	}

	if _, _, err := s.Login(context.Background(), "joao@example.com", "wrong"); err == nil {
		t.Errorf("wrong password must be rejected")
	}
}

func TestSetPostbackURL(t *testing.T) {
	repo := newFakeAffiliateRepo()
	s := NewAffiliateService(repo, validator.New())

	created, err := s.Register(context.Background(), &domain.Affiliate{
		TrackingCode: "joao123",
		Email:        "joao@example.com",
		Password:     "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := s.SetPostbackURL(context.Background(), created.ID, "https://joao.example/pb"); err != nil {
		t.Fatalf("SetPostbackURL: %v", err)
	}
	if repo.byCode["joao123"].PostbackURL != "https://joao.example/pb" {
		t.Errorf("postback url not stored")
	}

	if err := s.SetPostbackURL(context.Background(), created.ID, "not a url"); err == nil {
		t.Errorf("invalid url must be rejected")
	}

	// empty clears forwarding
	if err := s.SetPostbackURL(context.Background(), created.ID, ""); err != nil {
		t.Errorf("clearing url: %v", err)
	}
}

var _ AffiliateRepository = (*fakeAffiliateRepo)(nil)
