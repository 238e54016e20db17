// Package action 解析会话前端回传的动作字符串。
// 字符串只在边界处解析一次，之后按具体类型分发。
package action

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknown = errors.New("action: unknown action")

// Action 已解析的动作
type Action interface {
	isAction()
}

type (
	ShowCategory   struct{ CategoryID string } // cat_<id>
	ShowProduct    struct{ ProductID string }  // prod_<id>
	AddToCart      struct{ ProductID string }  // add_<id>
	RemoveFromCart struct{ ProductID string }  // remove_<id>
	ConfirmPayment struct{ OrderID string }    // confirm_payment_<orderId>
	Checkout       struct{}
	ClearCart      struct{}
	MainMenu       struct{}
	FAQ            struct{}
	ContactAdmin   struct{}
)

func (ShowCategory) isAction()   {}
func (ShowProduct) isAction()    {}
func (AddToCart) isAction()      {}
func (RemoveFromCart) isAction() {}
func (ConfirmPayment) isAction() {}
func (Checkout) isAction()       {}
func (ClearCart) isAction()      {}
func (MainMenu) isAction()       {}
func (FAQ) isAction()            {}
func (ContactAdmin) isAction()   {}

const (
	prefixCategory = "cat_"
	prefixProduct  = "prod_"
	prefixAdd      = "add_"
	prefixRemove   = "remove_"
	prefixConfirm  = "confirm_payment_"

	keyCheckout     = "checkout"
	keyClearCart    = "clear_cart"
	keyMainMenu     = "main_menu"
	keyFAQ          = "faq"
	keyContactAdmin = "contact_admin"
)

var fixed = map[string]Action{
	keyCheckout:     Checkout{},
	keyClearCart:    ClearCart{},
	keyMainMenu:     MainMenu{},
	keyFAQ:          FAQ{},
	keyContactAdmin: ContactAdmin{},
}

// Decode 解析动作字符串；前缀后的 ID 不能为空
func Decode(data string) (Action, error) {
	if a, ok := fixed[data]; ok {
		return a, nil
	}
	prefixed := []struct {
		prefix string
		build  func(id string) Action
	}{
		{prefixConfirm, func(id string) Action { return ConfirmPayment{OrderID: id} }},
		{prefixCategory, func(id string) Action { return ShowCategory{CategoryID: id} }},
		{prefixProduct, func(id string) Action { return ShowProduct{ProductID: id} }},
		{prefixAdd, func(id string) Action { return AddToCart{ProductID: id} }},
		{prefixRemove, func(id string) Action { return RemoveFromCart{ProductID: id} }},
	}
	for _, p := range prefixed {
		if !strings.HasPrefix(data, p.prefix) {
			continue
		}
		id := strings.TrimPrefix(data, p.prefix)
		if id == "" {
			return nil, fmt.Errorf("%w: %q has no id", ErrUnknown, data)
		}
		return p.build(id), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, data)
}

// Encode Decode 的逆操作
func Encode(a Action) string {
	switch a := a.(type) {
	case ShowCategory:
		return prefixCategory + a.CategoryID
	case ShowProduct:
		return prefixProduct + a.ProductID
	case AddToCart:
		return prefixAdd + a.ProductID
	case RemoveFromCart:
		return prefixRemove + a.ProductID
	case ConfirmPayment:
		return prefixConfirm + a.OrderID
	case Checkout:
		return keyCheckout
	case ClearCart:
		return keyClearCart
	case MainMenu:
		return keyMainMenu
	case FAQ:
		return keyFAQ
	case ContactAdmin:
		return keyContactAdmin
	}
	panic(fmt.Sprintf("action: unhandled type %T", a))
}
