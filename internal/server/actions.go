package server

import (
	"context"

	"github.com/example/shopbot/internal/action"
	"github.com/example/shopbot/internal/service"
)

// ActionResult 动作执行结果：Text 给用户看，Data 给前端渲染
type ActionResult struct {
	Action string      `json:"action"`
	Text   string      `json:"text"`
	Data   interface{} `json:"data,omitempty"`
}

func dispatch(ctx context.Context, svc *Services, msgs *service.Messages, userID string, a action.Action) (*ActionResult, error) {
	res := &ActionResult{Action: action.Encode(a)}

	switch a := a.(type) {
	case action.ShowCategory:
		view, err := svc.Products.ListByCategory(ctx, a.CategoryID)
		if err != nil {
			return nil, err
		}
		res.Text, res.Data = view.Category.Name, view

	case action.ShowProduct:
		p, err := svc.Products.GetByID(ctx, a.ProductID)
		if err != nil {
			return nil, err
		}
		res.Text, res.Data = p.Name, p

	case action.AddToCart:
		qty, err := svc.Cart.Add(ctx, userID, a.ProductID)
		if err != nil {
			return nil, err
		}
		res.Text, res.Data = msgs.ProductAdded(), map[string]int64{"quantity": qty}

	case action.RemoveFromCart:
		changed, err := svc.Cart.Remove(ctx, userID, a.ProductID)
		if err != nil {
			return nil, err
		}
		if changed {
			res.Text = msgs.ProductRemoved()
		}
		res.Data = map[string]bool{"removed": changed}

	case action.Checkout:
		o, err := svc.Checkout.Checkout(ctx, userID)
		if err != nil {
			return nil, err
		}
		res.Text, res.Data = msgs.OrderCreated(o), o

	case action.ConfirmPayment:
		r, err := svc.Checkout.Confirm(ctx, userID, a.OrderID)
		if err != nil {
			return nil, err
		}
		if !r.Duplicate {
			res.Text = msgs.PaymentConfirmed(r.Order)
		}
		res.Data = r

	case action.ClearCart:
		if err := svc.Cart.Clear(ctx, userID); err != nil {
			return nil, err
		}
		res.Text = msgs.CartCleared()

	case action.MainMenu:
		if _, err := svc.Users.Resolve(ctx, userID); err != nil {
			return nil, err
		}
		res.Text, res.Data = msgs.MainMenu(), svc.Products.ListCategories(ctx)

	case action.FAQ:
		res.Text = msgs.FAQ()

	case action.ContactAdmin:
		res.Text = msgs.ContactAdmin()
	}
	return res, nil
}
