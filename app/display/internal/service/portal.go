package service

import (
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/startup_pulse/app/display/internal/domain"
	"github.com/iWorld-y/startup_pulse/app/display/internal/usecase"
)

// PortalService 门户 HTTP 服务
type PortalService struct {
	ucUser   *usecase.UserUseCase
	ucSignal *usecase.SignalUseCase
	log      *log.Helper
}

// NewPortalService 创建门户服务实例
func NewPortalService(ucUser *usecase.UserUseCase, ucSignal *usecase.SignalUseCase, logger log.Logger) *PortalService {
	return &PortalService{
		ucUser:   ucUser,
		ucSignal: ucSignal,
		log:      log.NewHelper(logger),
	}
}

// RegisterRoutes 注册门户路由
func (s *PortalService) RegisterRoutes(srv *khttp.Server) {
	r := srv.Route("/api")
	r.POST("/register", s.Register)
	r.POST("/login", s.Login)
	r.GET("/profile", s.GetProfile)
	r.PUT("/profile", s.UpdateProfile)
	r.GET("/signals", s.ListSignals)
	r.GET("/signals/{company_id}", s.GetSignal)
	r.POST("/signals/refresh", s.RefreshSignals)
}

type authReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 用户注册
func (s *PortalService) Register(ctx khttp.Context) error {
	var req authReq
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := s.ucUser.Register(ctx, req.Username, req.Password); err != nil {
		return ctx.Result(200, map[string]any{"success": false, "message": err.Error()})
	}
	return ctx.Result(200, map[string]any{"success": true, "message": "success"})
}

// Login 用户登录
func (s *PortalService) Login(ctx khttp.Context) error {
	var req authReq
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	token, err := s.ucUser.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{"token": token, "username": req.Username})
}

// GetProfile 获取当前用户信息
func (s *PortalService) GetProfile(ctx khttp.Context) error {
	username, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	u, err := s.ucUser.GetProfile(ctx, username)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{"username": u.Username, "persona": u.Persona})
}

// UpdateProfile 更新当前用户画像
func (s *PortalService) UpdateProfile(ctx khttp.Context) error {
	username, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	var req struct {
		Persona string `json:"persona"`
	}
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := s.ucUser.UpdateProfile(ctx, username, req.Persona); err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{"success": true})
}

// ListSignals 分页列出公司信号摘要
func (s *PortalService) ListSignals(ctx khttp.Context) error {
	page, _ := strconv.Atoi(ctx.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(ctx.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = 10
	}

	signals, total, err := s.ucSignal.List(ctx, page, pageSize)
	if err != nil {
		return err
	}

	list := make([]map[string]any, 0, len(signals))
	for _, sig := range signals {
		list = append(list, map[string]any{
			"company_id":    sig.CompanyID,
			"company_name":  sig.CompanyName,
			"batch":         sig.Batch,
			"density_score": sig.DensityScore,
			"density_label": sig.DensityLabel,
			"trend":         sig.Trend,
			"signal_count":  sig.SignalCount,
			"created_at":    sig.CreatedAt,
		})
	}
	return ctx.Result(200, map[string]any{"signals": list, "total": total})
}

// GetSignal 获取指定公司最近一次的完整分析
func (s *PortalService) GetSignal(ctx khttp.Context) error {
	companyID := ctx.Vars().Get("company_id")
	if companyID == "" {
		return errors.BadRequest("INVALID_ARGUMENT", "company_id is required")
	}
	detail, err := s.ucSignal.GetLatest(ctx, companyID)
	if err != nil {
		return err
	}
	return ctx.Result(200, detailBody(detail))
}

// RefreshSignals 触发一轮新的分析（需登录）
func (s *PortalService) RefreshSignals(ctx khttp.Context) error {
	username, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	var req struct {
		CompanyIDs []string `json:"company_ids"`
	}
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	// 使用当前用户画像定制简报口吻
	persona := ""
	if u, err := s.ucUser.GetProfile(ctx, username); err == nil {
		persona = u.Persona
	}

	count, err := s.ucSignal.Refresh(ctx, req.CompanyIDs, persona)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{"completed": count})
}

// authenticate 从 Authorization 头解析 Bearer Token
func (s *PortalService) authenticate(ctx khttp.Context) (string, error) {
	auth := ctx.Header().Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", errors.Unauthorized("AUTH_FAILED", "missing bearer token")
	}
	return s.ucUser.ParseToken(strings.TrimPrefix(auth, "Bearer "))
}

func detailBody(d *domain.SignalDetail) map[string]any {
	body := map[string]any{
		"company_id":     d.CompanyID,
		"company_name":   d.CompanyName,
		"batch":          d.Batch,
		"analyst_report": d.Analyst,
		"pulse_report":   d.Pulse,
		"created_at":     d.CreatedAt,
	}
	if d.Briefing != nil {
		body["briefing"] = d.Briefing
	}
	return body
}
