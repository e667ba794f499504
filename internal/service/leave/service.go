package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
)

// LeaveServiceImpl serves balances and grants on top of the quota service's
// repositories.
type LeaveServiceImpl struct {
	*QuotaService
	now func() time.Time
}

func NewLeaveService(quota *QuotaService) *LeaveServiceImpl {
	return &LeaveServiceImpl{QuotaService: quota, now: time.Now}
}

func (s *LeaveServiceImpl) currentYear() int {
	date, _ := s.localDay(s.now())
	return date.Year()
}

// authorizeUser resolves the target user of a balance or grant query. Others'
// data needs admin, or manager of the same business unit.
func (s *LeaveServiceImpl) authorizeUser(ctx context.Context, userID string) (string, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return "", err
	}
	if userID == "" || userID == actor.ID {
		return actor.ID, nil
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.CanViewTeamAttendance(actor, target.BU()) {
		return "", leave.ErrUnauthorizedAccess
	}
	return target.ID, nil
}

func toBalanceResponse(b leave.Balance) leave.BalanceResponse {
	return leave.BalanceResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		LeaveType: b.LeaveType,
		Year:      b.Year,
		TotalDays: b.TotalDays,
		UsedDays:  b.UsedDays,
		Remaining: b.Remaining(),
	}
}

// summarize folds balance rows into per-type figures. Missing types are zero.
func summarize(userID string, year int, balances []leave.Balance) leave.BalanceSummary {
	summary := leave.BalanceSummary{UserID: userID, Year: year}
	for _, b := range balances {
		var f *leave.BalanceFigures
		switch b.LeaveType {
		case leave.TypeAnnual:
			f = &summary.Annual
		case leave.TypeCompensatory:
			f = &summary.Compensatory
		case leave.TypeSpecial:
			f = &summary.Special
		default:
			continue
		}
		f.Total += b.TotalDays
		f.Used += b.UsedDays
		f.Remaining = f.Total - f.Used
	}
	return summary
}

func (s *LeaveServiceImpl) GetBalances(ctx context.Context, query leave.BalanceQuery) (leave.BalancesResponse, error) {
	userID, err := s.authorizeUser(ctx, query.UserID)
	if err != nil {
		return leave.BalancesResponse{}, err
	}
	year := query.Year
	if year == 0 {
		year = s.currentYear()
	}

	balances, err := s.balances.ListByUser(ctx, userID, year)
	if err != nil {
		return leave.BalancesResponse{}, fmt.Errorf("failed to list leave balances: %w", err)
	}

	if query.Summary {
		summary := summarize(userID, year, balances)
		return leave.BalancesResponse{Summary: &summary}, nil
	}

	resp := leave.BalancesResponse{Balances: make([]leave.BalanceResponse, 0, len(balances))}
	for _, b := range balances {
		resp.Balances = append(resp.Balances, toBalanceResponse(b))
	}
	return resp, nil
}

func toGrantResponse(g leave.Grant) leave.GrantResponse {
	return leave.GrantResponse{
		ID:        g.ID,
		UserID:    g.UserID,
		LeaveType: g.LeaveType,
		Days:      g.Days,
		GrantType: g.GrantType,
		Reason:    g.Reason,
		GrantedBy: g.GrantedBy,
		Year:      g.Year,
		GrantedAt: g.GrantedAt,
	}
}

func (s *LeaveServiceImpl) ListGrants(ctx context.Context, query leave.GrantQuery) ([]leave.GrantResponse, error) {
	userID, err := s.authorizeUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	query.UserID = userID

	grants, err := s.grants.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave grants: %w", err)
	}

	out := make([]leave.GrantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, toGrantResponse(g))
	}
	return out, nil
}

// CreateGrant adds days to a user's balance by hand. Admins only.
func (s *LeaveServiceImpl) CreateGrant(ctx context.Context, req leave.CreateGrantRequest) (leave.GrantResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.GrantResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.GrantResponse{}, err
	}
	if !user.IsAdmin(actor) {
		return leave.GrantResponse{}, user.ErrAdminAccessRequired
	}

	target, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return leave.GrantResponse{}, err
	}

	year := req.Year
	if year == 0 {
		year = s.currentYear()
	}
	g := leave.Grant{
		UserID:    target.ID,
		LeaveType: leave.LeaveType(req.LeaveType),
		Days:      req.Days,
		GrantType: leave.GrantManual,
		GrantedBy: &actor.ID,
		Year:      year,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		g.Reason = &reason
	}

	created, err := s.grant(ctx, g)
	if err != nil {
		return leave.GrantResponse{}, err
	}

	slog.InfoContext(ctx, "Leave granted",
		"grant_id", created.ID, "user_id", target.ID, "leave_type", g.LeaveType, "days", g.Days, "actor_id", actor.ID)
	return toGrantResponse(created), nil
}

// GetTeamBalances summarizes the year's balances of every tracked user in
// scope. Managers only see their own business unit.
func (s *LeaveServiceImpl) GetTeamBalances(ctx context.Context, query leave.TeamBalanceQuery) ([]leave.TeamBalanceEntry, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	bu, err := teamScope(actor, query.BUCode)
	if err != nil {
		return nil, err
	}
	year := query.Year
	if year == 0 {
		year = s.currentYear()
	}

	filter := user.UserFilter{ExcludeArtists: true}
	if bu != "" {
		filter.BUCode = &bu
	}
	members, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	entries := make([]leave.TeamBalanceEntry, 0, len(members))
	if len(members) == 0 {
		return entries, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	balances, err := s.balances.ListByYear(ctx, year, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	byUser := make(map[string][]leave.Balance)
	for _, b := range balances {
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	for _, m := range members {
		entries = append(entries, leave.TeamBalanceEntry{
			UserID:  m.ID,
			Name:    m.Name,
			BUCode:  m.BUCode,
			Summary: summarize(m.ID, year, byUser[m.ID]),
		})
	}
	return entries, nil
}

// teamScope resolves the business unit a team query may cover. Managers are
// pinned to their own unit; an empty result means every unit.
func teamScope(actor *user.AppUser, buCode string) (string, error) {
	if user.IsAdmin(actor) {
		return buCode, nil
	}
	if !user.IsManager(actor) {
		return "", user.ErrManagerAccessRequired
	}
	if actor.BU() == "" || (buCode != "" && buCode != actor.BU()) {
		return "", leave.ErrUnauthorizedAccess
	}
	return actor.BU(), nil
}
