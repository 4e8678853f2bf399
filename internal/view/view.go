package view

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/freelance-nexus/internal/attachment"
	"github.com/ignatzorin/freelance-nexus/internal/goroutine"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/service"
)

// View смонтированное представление.
type View interface {
	Name() string
	Load(ctx context.Context) error
	Render() any
	OnChange(fn func())
	Close()
}

// Session источник текущего пользователя.
type Session interface {
	CurrentUser() *models.User
}

// Confirmer спрашивает подтверждение разрушительного действия.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc адаптер функции к Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed подтверждение, данное заранее (флаг --yes или confirm=true).
var Confirmed = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Declined отказ без вопроса.
var Declined = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })

// Navigator получает переход после успешной отправки формы.
type Navigator interface {
	Navigate(to, flash string)
}

// Navigation последний переход.
type Navigation struct {
	To    string `json:"to"`
	Flash string `json:"flash,omitempty"`
}

// Recorder запоминает последний переход; используется HTTP интерфейсом.
type Recorder struct {
	mu   sync.Mutex
	last *Navigation
}

func (r *Recorder) Navigate(to, flash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &Navigation{To: to, Flash: flash}
}

// Last последний переход или nil.
func (r *Recorder) Last() *Navigation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Alert блокирующее сообщение о неудаче разрушительного действия.
// Ошибки чтения показываются в представлении, а не через Alert.
type Alert struct {
	Message string
	Err     error
}

func (a *Alert) Error() string {
	if a.Err != nil {
		return a.Message + ": " + apperror.UserMessage(a.Err)
	}
	return a.Message
}

func (a *Alert) Unwrap() error {
	return a.Err
}

// AsAlert извлекает Alert из цепочки ошибок.
func AsAlert(err error) (*Alert, bool) {
	var alert *Alert
	ok := errors.As(err, &alert)
	return alert, ok
}

// Deps зависимости оркестраторов. Confirm и Navigate задаются на время запроса.
type Deps struct {
	Session       Session
	Projects      *service.ProjectService
	Proposals     *service.ProposalService
	Payments      *service.PaymentService
	Freelancers   *service.FreelancerService
	AI            *service.AIService
	Notifications *service.NotificationService
	Attachments   *attachment.Validator
	Confirm       Confirmer
	Navigate      Navigator
}

// With копия зависимостей с другим способом подтверждения и навигации.
func (d Deps) With(confirm Confirmer, nav Navigator) Deps {
	d.Confirm = confirm
	d.Navigate = nav
	return d
}

func (d Deps) user() (*models.User, error) {
	if d.Session == nil {
		return nil, apperror.ErrNotAuthenticated
	}
	user := d.Session.CurrentUser()
	if user == nil {
		return nil, apperror.ErrNotAuthenticated
	}
	return user, nil
}

// confirm возвращает ErrNotConfirmed, если пользователь отказался.
func (d Deps) confirm(ctx context.Context, prompt string) error {
	if d.Confirm == nil {
		return apperror.ErrNotConfirmed
	}
	ok, err := d.Confirm.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrNotConfirmed
	}
	return nil
}

func (d Deps) navigate(to, flash string) {
	if d.Navigate != nil {
		d.Navigate.Navigate(to, flash)
	}
}

// Gather выполняет независимые чтения параллельно и ждёт все.
// Первая ошибка отменяет контекст остальных и возвращается.
func Gather(ctx context.Context, tasks ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(goroutine.Protect(func() error {
			return task(gctx)
		}))
	}
	return g.Wait()
}

// filterByStatus производный список; FilterAll и пустая строка означают все.
func filterByStatus[T any](items []T, status string, statusOf func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if status == "" || status == models.FilterAll || statusOf(item) == status {
			out = append(out, item)
		}
	}
	return out
}

func countByStatus[T any](items []T, statusOf func(T) string) map[string]int {
	counts := map[string]int{models.FilterAll: len(items)}
	for _, item := range items {
		counts[statusOf(item)]++
	}
	return counts
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func projectStatus(p models.Project) string   { return p.Status }
func proposalStatus(p models.Proposal) string { return p.Status }
func paymentStatus(p models.Payment) string   { return p.Status }
