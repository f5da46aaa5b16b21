package share

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/notify"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/utils"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/repositories"
	"github.com/3Eeeecho/go-secureprint/internal/services/explorer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultContentType 打印端固定按 PDF 接收文件内容, 与上传时的类型无关
const DefaultContentType = "application/pdf"

// LinkService 打印链接的签发, 转发, 验证码校验和受控下载
type LinkService interface {
	IssueLink(ctx context.Context, requester Requester, fileRef string) (*IssuedLink, error)
	RelayLink(ctx context.Context, linkID, email string) error
	ValidateCode(ctx context.Context, linkID, code string) error
	FetchBlob(ctx context.Context, linkID string) (*BlobStream, error)
}

// Requester 已认证的调用方
type Requester struct {
	UserID uint64
	Email  string
}

type IssuedLink struct {
	LinkID    string
	ExpiresAt time.Time
	URL       string
	OTP       string // 明文返回给签发者本人
}

// BlobStream 调用方负责关闭 Reader
type BlobStream struct {
	Reader      io.ReadCloser
	ContentType string
	Size        int64 // 未知时为 -1
	FileName    string
}

type linkService struct {
	linkRepo    repositories.LinkRepository
	files       explorer.FileService
	mailer      notify.Mailer     // 转发链接, 同步发送
	dispatcher  notify.Dispatcher // 签发通知, 分离发送
	limiter     AttemptLimiter
	ttl         time.Duration
	frontendURL string
	now         func() time.Time
	genOTP      func() (string, error)
}

var _ LinkService = (*linkService)(nil)

type Option func(*linkService)

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(s *linkService) { s.now = now }
}

// WithOTPGenerator 替换验证码生成器
func WithOTPGenerator(gen func() (string, error)) Option {
	return func(s *linkService) { s.genOTP = gen }
}

func WithAttemptLimiter(l AttemptLimiter) Option {
	return func(s *linkService) { s.limiter = l }
}

func NewLinkService(
	linkRepo repositories.LinkRepository,
	files explorer.FileService,
	mailer notify.Mailer,
	dispatcher notify.Dispatcher,
	cfg config.LinkConfig,
	opts ...Option,
) LinkService {
	s := &linkService{
		linkRepo:    linkRepo,
		files:       files,
		mailer:      mailer,
		dispatcher:  dispatcher,
		limiter:     NoopLimiter{},
		ttl:         cfg.TTL(),
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		now:         time.Now,
		genOTP:      utils.GenerateOTP,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *linkService) shareURL(linkID string) string {
	return s.frontendURL + "/shop/" + linkID
}

// IssueLink 只有文件所有者可以签发
func (s *linkService) IssueLink(ctx context.Context, requester Requester, fileRef string) (*IssuedLink, error) {
	if strings.TrimSpace(fileRef) == "" {
		return nil, xerr.ErrInvalidParams
	}

	file, err := s.files.ResolveFile(ctx, fileRef)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != requester.UserID {
		logger.Warn("IssueLink: 非文件所有者尝试签发链接",
			zap.Uint64("userID", requester.UserID), zap.Uint64("fileID", file.ID))
		return nil, xerr.ErrPermissionDenied
	}

	otp, err := s.genOTP()
	if err != nil {
		return nil, fmt.Errorf("生成验证码失败: %w", err)
	}

	now := s.now()
	link := &models.LinkGrant{
		ID:           uuid.NewString(),
		FileBlobID:   file.BlobID,
		FileRecordID: file.ID,
		FileName:     file.FileName,
		OwnerID:      requester.UserID,
		OTP:          otp,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		Validated:    false,
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		logger.Error("IssueLink: 保存链接失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", xerr.ErrDatabaseError, err)
	}
	linksIssued.Inc()

	// 通知失败不影响签发结果
	s.dispatcher.Dispatch(notify.OTPMail(requester.Email, otp, link.ExpiresAt))

	logger.Info("IssueLink: 链接签发成功",
		zap.String("linkID", link.ID),
		zap.Uint64("fileID", file.ID),
		zap.Time("expiresAt", link.ExpiresAt))
	return &IssuedLink{
		LinkID:    link.ID,
		ExpiresAt: link.ExpiresAt,
		URL:       s.shareURL(link.ID),
		OTP:       otp,
	}, nil
}

// RelayLink 不校验调用方是否为链接所有者, 持有链接 id 即可转发
func (s *linkService) RelayLink(ctx context.Context, linkID, email string) error {
	email = strings.TrimSpace(email)
	if linkID == "" || email == "" {
		return xerr.ErrInvalidParams
	}

	link, err := s.findLink(ctx, linkID)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, notify.LinkMail(email, s.shareURL(link.ID), link.ExpiresAt)); err != nil {
		logger.Error("RelayLink: 发送邮件失败", zap.String("linkID", link.ID), zap.String("to", email), zap.Error(err))
		return fmt.Errorf("%w: %v", xerr.ErrEmailDelivery, err)
	}

	logger.Info("RelayLink: 链接已转发", zap.String("linkID", link.ID), zap.String("to", email))
	return nil
}

// ValidateCode 每次校验成功都会覆盖 validated_at
func (s *linkService) ValidateCode(ctx context.Context, linkID, code string) error {
	if strings.TrimSpace(code) == "" {
		return xerr.ErrInvalidParams
	}

	link, err := s.findLink(ctx, linkID)
	if err != nil {
		return err
	}

	now := s.now()
	if link.ExpiredAt(now) {
		otpValidations.WithLabelValues("expired").Inc()
		return xerr.ErrLinkExpired
	}

	blocked, err := s.limiter.Blocked(ctx, link.ID)
	if err != nil {
		logger.Warn("ValidateCode: 读取失败次数出错, 跳过限制", zap.String("linkID", link.ID), zap.Error(err))
	}
	if blocked {
		otpValidations.WithLabelValues("blocked").Inc()
		return xerr.ErrTooManyAttempts
	}

	if !utils.OTPEqual(link.OTP, code) {
		otpValidations.WithLabelValues("invalid").Inc()
		if err := s.limiter.RecordFailure(ctx, link.ID, link.ExpiresAt.Sub(now)); err != nil {
			logger.Warn("ValidateCode: 记录失败次数出错", zap.String("linkID", link.ID), zap.Error(err))
		}
		return xerr.ErrInvalidOTP
	}

	if err := s.linkRepo.MarkValidated(ctx, link.ID, now); err != nil {
		logger.Error("ValidateCode: 更新链接状态失败", zap.String("linkID", link.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", xerr.ErrDatabaseError, err)
	}
	if err := s.limiter.Reset(ctx, link.ID); err != nil {
		logger.Warn("ValidateCode: 清除失败次数出错", zap.String("linkID", link.ID), zap.Error(err))
	}
	otpValidations.WithLabelValues("ok").Inc()

	logger.Info("OTP validated for link", zap.String("linkID", link.ID))
	return nil
}

// FetchBlob 已验证的链接在过期前可以反复下载
func (s *linkService) FetchBlob(ctx context.Context, linkID string) (*BlobStream, error) {
	link, err := s.findLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if !link.Validated {
		blobFetches.WithLabelValues("not_validated").Inc()
		return nil, xerr.ErrOTPNotValidated
	}
	if link.ExpiredAt(s.now()) {
		blobFetches.WithLabelValues("expired").Inc()
		return nil, xerr.ErrLinkExpired
	}

	obj, err := s.files.OpenBlob(ctx, link.FileBlobID)
	if err != nil {
		blobFetches.WithLabelValues("error").Inc()
		return nil, err
	}

	blobFetches.WithLabelValues("ok").Inc()
	logger.Info("Blob requested for link", zap.String("linkID", link.ID))
	return &BlobStream{
		Reader:      obj.Reader,
		ContentType: DefaultContentType,
		Size:        obj.Size,
		FileName:    link.FileName,
	}, nil
}

func (s *linkService) findLink(ctx context.Context, linkID string) (*models.LinkGrant, error) {
	if linkID == "" {
		return nil, xerr.ErrLinkNotFound
	}
	link, err := s.linkRepo.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", xerr.ErrDatabaseError, err)
	}
	if link == nil {
		return nil, xerr.ErrLinkNotFound
	}
	return link, nil
}
