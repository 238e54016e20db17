package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/shopbot/internal/datamodels/order"
)

// DefaultCurrency 默认货币符号
const DefaultCurrency = "€"

// Messages 通知文案
type Messages struct {
	currency string
}

// NewMessages 创建文案格式化器
func NewMessages(currency string) *Messages {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Messages{currency: currency}
}

// Money 金额保留两位小数并带货币符号
func (m *Messages) Money(d decimal.Decimal) string {
	return d.StringFixed(2) + m.currency
}

func (m *Messages) date(t time.Time) string {
	return t.Format("02/01/2006")
}

// PaymentConfirmed 支付成功后发给用户
func (m *Messages) PaymentConfirmed(o *order.Order) string {
	return "✅ Paiement confirmé!\n\n" +
		fmt.Sprintf("📦 Commande: %s\n", o.ID) +
		fmt.Sprintf("💰 Montant: %s\n\n", m.Money(o.Total)) +
		"🚚 Votre commande sera traitée dans les plus brefs délais."
}

// AdminNewOrder 支付成功后发给管理员的订单明细
func (m *Messages) AdminNewOrder(o *order.Order) string {
	var b strings.Builder
	b.WriteString("🛎️ NOUVELLE COMMANDE\n\n")
	fmt.Fprintf(&b, "👤 Client: %s\n", o.UserID)
	fmt.Fprintf(&b, "📦 Commande: %s\n", o.ID)
	fmt.Fprintf(&b, "💰 Total: %s\n\n", m.Money(o.Total))
	b.WriteString("📝 Détails:")
	for _, pid := range o.ProductIDs() {
		it := o.Items[pid]
		fmt.Fprintf(&b, "\n• %s × %d", it.Name, it.Quantity)
	}
	return b.String()
}

// LowStock 库存预警
func (m *Messages) LowStock(name string, remaining int64) string {
	return fmt.Sprintf("⚠️ ALERTE STOCK: %s - Stock restant: %d", name, remaining)
}

// SupportForward 转发给管理员的用户留言
func (m *Messages) SupportForward(userID, name, text string) string {
	if name == "" {
		name = userID
	}
	return fmt.Sprintf("💬 Nouveau message support de %s (%s):\n\n\"%s\"\n\nRépondez avec /reply %s votre_réponse", name, userID, text, userID)
}

// SupportAck 用户留言的回执
func (m *Messages) SupportAck() string {
	return "🤖 Je transfère votre message à notre équipe support. Vous aurez une réponse rapidement!"
}

// SupportReply 管理员回复
func (m *Messages) SupportReply(text string) string {
	return "💬 Réponse du support:\n\n" + text
}

// Promotion 广播
func (m *Messages) Promotion(text string) string {
	return "📢 Promotion spéciale:\n\n" + text
}

// StatsReport 管理员统计报表
func (m *Messages) StatsReport(r *StatsReport) string {
	var b strings.Builder
	b.WriteString("📊 Statistiques Admin\n\n")
	fmt.Fprintf(&b, "👥 Utilisateurs totaux: %d\n", r.Stats.TotalUsers)
	fmt.Fprintf(&b, "📦 Commandes totales: %d\n", r.Stats.TotalOrders)
	fmt.Fprintf(&b, "💰 Chiffre d'affaires: %s\n\n", m.Money(r.Stats.TotalRevenue))
	b.WriteString("🏆 Top Produits:")
	for _, t := range r.Top {
		fmt.Fprintf(&b, "\n• %s: %d ventes", t.Name, t.Sold)
	}
	return b.String()
}

// History 最近订单
func (m *Messages) History(orders []*order.Order) string {
	if len(orders) == 0 {
		return "📋 Aucune commande passée pour le moment."
	}
	var b strings.Builder
	b.WriteString("📋 Historique des commandes\n")
	for _, o := range orders {
		status := "⏳ En attente"
		if o.Paid() {
			status = "✅ Payée"
		}
		fmt.Fprintf(&b, "\n📦 %s\n📅 %s\n💰 %s\n📊 %s\n", o.ID, m.date(o.CreatedAt), m.Money(o.Total), status)
	}
	return b.String()
}

func (m *Messages) ProductAdded() string   { return "✅ Produit ajouté au panier!" }
func (m *Messages) ProductRemoved() string { return "❌ Produit retiré du panier!" }
func (m *Messages) CartCleared() string    { return "🗑️ Panier vidé!" }
func (m *Messages) MainMenu() string       { return "🏠 Menu Principal" }

// OrderCreated 下单后提示选择支付方式
func (m *Messages) OrderCreated(o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 Commande %s\n\n", o.ID)
	for _, pid := range o.ProductIDs() {
		it := o.Items[pid]
		fmt.Fprintf(&b, "%s × %d = %s\n", it.Name, it.Quantity, m.Money(it.Subtotal()))
	}
	fmt.Fprintf(&b, "\n💰 Total: %s\n\n🔒 Choisissez votre mode de paiement:", m.Money(o.Total))
	return b.String()
}

// ContactAdmin 用户请求人工客服
func (m *Messages) ContactAdmin() string {
	return "👨‍💼 Un conseiller va vous contacter. Décrivez votre problème:"
}

// FAQ 常见问题
func (m *Messages) FAQ() string {
	return "❓ Questions Fréquentes\n\n" +
		"Q: Comment passer une commande?\n" +
		"R: Parcourez le catalogue, ajoutez au panier, puis cliquez sur \"Commander\".\n\n" +
		"Q: Quels sont les modes de paiement?\n" +
		"R: Nous acceptons Stripe et PayPal pour des paiements sécurisés.\n\n" +
		"Q: Combien de temps pour la livraison?\n" +
		"R: Livraison sous 2-5 jours ouvrés selon votre localisation.\n\n" +
		"Q: Puis-je modifier ma commande?\n" +
		"R: Contactez-nous rapidement après validation pour toute modification."
}
