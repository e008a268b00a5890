package dialogue

import (
	"context"
	"strconv"
	"strings"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/session"
)

// renderPage shows list page n of the owner's records in the stored sort order.
// edit replaces the tapped message instead of sending a new one.
func (h *Handlers) renderPage(ctx context.Context, ev session.Event, u *model.User, n int, edit bool) (session.Response, error) {
	view, err := h.listView(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	p, err := h.subs.Page(ctx, u.ID, n, view)
	if err != nil {
		return session.Response{}, err
	}
	text, kb := h.listText(p), h.listKeyboard(p, view)
	if edit && ev.MessageID != 0 {
		return session.Edit(ev.MessageID, text, kb), nil
	}
	return session.Send(text, kb), nil
}

func (h *Handlers) showPage(ctx context.Context, ev session.Event, n int) (session.Response, error) {
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	return h.renderPage(ctx, ev, u, n, true)
}

func (h *Handlers) mySubscriptions(ctx context.Context, ev session.Event) (session.Response, error) {
	return h.showPage(ctx, ev, 0)
}

func (h *Handlers) listPage(ctx context.Context, ev session.Event) (session.Response, error) {
	n, err := session.IntParam(ev.Data, PrefixListPage)
	if err != nil {
		return session.Response{}, err
	}
	return h.showPage(ctx, ev, n)
}

// sort applies the toggle rule to the stored view and re-renders the page.
func (h *Handlers) sort(ctx context.Context, ev session.Event) (session.Response, error) {
	parts, err := session.SplitParams(ev.Data, PrefixSort, 2)
	if err != nil {
		return session.Response{}, err
	}
	field := parts[0]
	if !model.IsSortField(field) {
		return session.Response{}, badToken(ev.Data, "unknown sort field "+field)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 0 {
		return session.Response{}, badToken(ev.Data, "page")
	}
	view, err := h.listView(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	if err := h.store.SetListContext(ctx, ev.UserID, view.Toggle(field)); err != nil {
		return session.Response{}, err
	}
	return h.showPage(ctx, ev, page)
}

func (h *Handlers) detailResponse(ctx context.Context, ev session.Event, id int64, page int, edit bool) (session.Response, error) {
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s, err := h.subs.Get(ctx, u.ID, id)
	if err != nil {
		if isNotFound(err) {
			return h.notFound(ctx, ev)
		}
		return session.Response{}, err
	}
	if edit {
		return session.Edit(ev.MessageID, h.detail(s), h.detailKeyboard(id, page)), nil
	}
	return session.Send(h.detail(s), h.detailKeyboard(id, page)), nil
}

func (h *Handlers) view(ctx context.Context, ev session.Event) (session.Response, error) {
	id, page, err := session.IDPageParams(ev.Data, PrefixView)
	if err != nil {
		return session.Response{}, err
	}
	return h.detailResponse(ctx, ev, id, page, true)
}

// editDetail opens an existing record as a draft and swaps in the edit keyboard.
func (h *Handlers) editDetail(ctx context.Context, ev session.Event) (session.Response, error) {
	id, page, err := session.IDPageParams(ev.Data, PrefixEditDetail)
	if err != nil {
		return session.Response{}, err
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s, err := h.subs.Get(ctx, u.ID, id)
	if err != nil {
		if isNotFound(err) {
			return h.notFound(ctx, ev)
		}
		return session.Response{}, err
	}
	d := &model.RecordDraft{Subscription: *s, MessageID: ev.MessageID, Page: page}
	if err := h.commit(ctx, ev.UserID, d, session.EvOpenExisting); err != nil {
		return session.Response{}, err
	}
	return session.EditKeyboard(ev.MessageID, h.draftEditKeyboard(d)), nil
}

// backToView drops the edit and shows the stored record again.
func (h *Handlers) backToView(ctx context.Context, ev session.Event) (session.Response, error) {
	prefix := PrefixBackToView
	if strings.HasPrefix(ev.Data, PrefixCancelEditView) {
		prefix = PrefixCancelEditView
	}
	id, page, err := session.IDPageParams(ev.Data, prefix)
	if err != nil {
		return session.Response{}, err
	}
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	return h.detailResponse(ctx, ev, id, page, true)
}

func (h *Handlers) updateView(ctx context.Context, ev session.Event) (session.Response, error) {
	id, page, err := session.IDPageParams(ev.Data, PrefixUpdateView)
	if err != nil {
		return session.Response{}, err
	}
	d, ok, err := h.activeDraft(ctx, ev, session.EvSave)
	if err != nil {
		return session.Response{}, err
	}
	if !ok || d.Subscription.ID != id {
		return h.expired(ctx, ev)
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s := d.Subscription
	if err := h.subs.Save(ctx, u.ID, &s); err != nil {
		if isNotFound(err) {
			return h.notFound(ctx, ev)
		}
		return session.Response{}, err
	}
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.detail(&s), h.detailKeyboard(id, page)).
		WithNotice(h.t.T("record.updated")), nil
}

func (h *Handlers) deleteConfirm(ctx context.Context, ev session.Event) (session.Response, error) {
	id, page, err := session.IDPageParams(ev.Data, PrefixDeleteConfirm)
	if err != nil {
		return session.Response{}, err
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s, err := h.subs.Get(ctx, u.ID, id)
	if err != nil {
		if isNotFound(err) {
			return h.notFound(ctx, ev)
		}
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.t.T("delete.confirm", s.Name), h.deleteConfirmKeyboard(id, page)), nil
}

// deleteExecute removes the record and shows the page it was on, or the last
// page left after the removal.
func (h *Handlers) deleteExecute(ctx context.Context, ev session.Event) (session.Response, error) {
	id, page, err := session.IDPageParams(ev.Data, PrefixDeleteExecute)
	if err != nil {
		return session.Response{}, err
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	if err := h.subs.Delete(ctx, u.ID, id); err != nil {
		if isNotFound(err) {
			return h.notFound(ctx, ev)
		}
		return session.Response{}, err
	}
	resp, err := h.renderPage(ctx, ev, u, page, true)
	if err != nil {
		return session.Response{}, err
	}
	return resp.WithNotice(h.t.T("record.deleted")), nil
}
