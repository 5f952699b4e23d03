package order

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	"hoalan-be/internal/apperr"
	"hoalan-be/internal/cart"
	"hoalan-be/internal/delivery"
	"hoalan-be/internal/logger"
	"hoalan-be/internal/mail"
	"hoalan-be/internal/payment"
	"hoalan-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProcessOrderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	ProvinceID    int
	DistrictID    int
	WardCode      string
	IPAddr        string
}

type ResolveCancelInput struct {
	Accept bool
	Reason string
}

type Service interface {
	// CreateOrder converts the cart items into a PENDING order with frozen
	// cost snapshots, decrementing stock atomically. Any item failure aborts
	// the whole order.
	CreateOrder(ctx context.Context, userID uint, cartItemIDs []uuid.UUID, method PaymentMethod) (*Order, error)

	// ProcessOrder quotes shipping, opens a PENDING ledger entry for
	// total + shipping - discount and returns the URL the customer should be
	// redirected to.
	ProcessOrder(ctx context.Context, orderID uuid.UUID, in ProcessOrderInput) (string, error)

	// PaymentCallback reconciles a verified gateway callback with the ledger
	// and the order status. Safe to invoke more than once per order; a
	// settled ledger entry is never touched again.
	PaymentCallback(ctx context.Context, orderID uuid.UUID, payDate time.Time, success bool) error

	// RequestCancel moves the order into the CANCELING approval state.
	RequestCancel(ctx context.Context, orderID uuid.UUID, userID uint) error

	// ResolveCancel accepts or rejects a pending cancellation. Acceptance
	// cancels the order and refunds the settled transaction.
	ResolveCancel(ctx context.Context, orderID uuid.UUID, in ResolveCancelInput, ipAddr string) error

	GetOrder(ctx context.Context, orderID uuid.UUID, userID uint, isAdmin bool) (*Order, error)
	ListOrders(ctx context.Context, userID uint) ([]*Order, error)
}

type service struct {
	repo          Repository
	cartRepo      cart.Repository
	userRepo      user.Repository
	gateway       payment.Gateway
	quoter        delivery.Quoter
	mailer        mail.Mailer
	clientBaseURL string
}

func NewService(
	repo Repository,
	cartRepo cart.Repository,
	userRepo user.Repository,
	gateway payment.Gateway,
	quoter delivery.Quoter,
	mailer mail.Mailer,
	clientBaseURL string,
) Service {
	return &service{
		repo:          repo,
		cartRepo:      cartRepo,
		userRepo:      userRepo,
		gateway:       gateway,
		quoter:        quoter,
		mailer:        mailer,
		clientBaseURL: clientBaseURL,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uint, cartItemIDs []uuid.UUID, method PaymentMethod) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Uint("user_id", userID),
		zap.Int("item_count", len(cartItemIDs)),
	)

	if len(cartItemIDs) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        StatusPending,
		PaymentMethod: method,
	}

	err := s.repo.RunInTransaction(ctx, func(tx *sql.Tx) error {
		var totalCost, discountCost int64

		for _, cartItemID := range cartItemIDs {
			item, err := s.cartRepo.FindItem(ctx, tx, cartItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return ErrCartItemNotFound
			}
			if !item.Product.Purchasable() || item.Cost == nil {
				return ErrProductNotFound
			}
			if item.Option == nil {
				return ErrOptionNotFound
			}
			if item.Option.Stock < item.Quantity {
				return ErrProductSoldOut
			}

			ok, err := s.repo.DecrementOptionStock(ctx, tx, item.Option.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// Lost the race for the last units.
				return ErrProductSoldOut
			}

			if err := s.cartRepo.DeleteItem(ctx, tx, cartItemID); err != nil {
				return err
			}

			lineGross := item.Cost.SaleCost * int64(item.Quantity)
			lineDiscount := lineGross * int64(item.Cost.DiscountPercentage) / 100

			totalCost += lineGross - lineDiscount
			discountCost += lineDiscount

			o.Items = append(o.Items, OrderItem{
				ID:                 uuid.New(),
				OrderID:            o.ID,
				ProductID:          item.Product.ID,
				OptionID:           item.Option.ID,
				Quantity:           item.Quantity,
				CostID:             item.Cost.ID,
				SaleCost:           item.Cost.SaleCost,
				DiscountPercentage: item.Cost.DiscountPercentage,
				ProductName:        item.Product.Name,
			})
		}

		o.TotalCost = totalCost
		o.DiscountCost = discountCost

		if err := s.repo.InsertOrder(ctx, tx, o); err != nil {
			return err
		}
		for i := range o.Items {
			if err := s.repo.InsertOrderItem(ctx, tx, &o.Items[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Warn("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Int64("total_cost", o.TotalCost),
		zap.Int64("discount_cost", o.DiscountCost),
	)

	return o, nil
}

func (s *service) ProcessOrder(ctx context.Context, orderID uuid.UUID, in ProcessOrderInput) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProcessOrder"),
		zap.String("order_id", orderID.String()),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o == nil {
		return "", ErrOrderNotFound
	}

	// The quote is an external call and runs before any write: a quote fault
	// aborts processing with no ledger entry created.
	packageItems := make([]delivery.PackageItem, 0, len(o.Items))
	for _, item := range o.Items {
		packageItems = append(packageItems, delivery.PackageItem{
			Name:     item.ProductName,
			Quantity: item.Quantity,
		})
	}

	shippingCost, err := s.quoter.CalcFee(ctx, delivery.QuoteRequest{
		InsuredValue: o.TotalCost,
		ToDistrictID: in.DistrictID,
		ToWardCode:   in.WardCode,
		Items:        packageItems,
	})
	if err != nil {
		log.Error("delivery quote failed", zap.Error(err))
		return "", apperr.Wrap(err, "failed to get delivery quote")
	}

	amount := o.TotalCost + shippingCost - o.DiscountCost

	txn := &Transaction{
		ID:     uuid.New(),
		Amount: amount,
		Status: TransactionPending,
	}

	err = s.repo.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.repo.InsertTransaction(ctx, tx, txn); err != nil {
			return err
		}

		o.CustomerName = in.CustomerName
		o.CustomerEmail = in.CustomerEmail
		o.CustomerPhone = in.CustomerPhone
		o.Address = in.Address
		o.ProvinceID = in.ProvinceID
		o.DistrictID = in.DistrictID
		o.WardCode = in.WardCode
		o.ShippingCost = shippingCost
		o.TransactionID = &txn.ID

		if err := s.repo.UpdateOrderForProcessing(ctx, tx, o); err != nil {
			return err
		}

		if o.PaymentMethod != PaymentMethodVNPay {
			// No gateway round-trip for this method; the order moves
			// straight to preparation.
			if _, err := s.repo.UpdateOrderStatus(ctx, tx, orderID, StatusPreparing, StatusPending); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Error("failed to process order", zap.Error(err))
		return "", err
	}

	log.Info("order processed",
		zap.Int64("shipping_cost", shippingCost),
		zap.Int64("transaction_amount", amount),
		zap.String("payment_method", string(o.PaymentMethod)),
	)

	if o.PaymentMethod != PaymentMethodVNPay {
		return s.resultURL(orderID), nil
	}

	return s.gateway.BuildPayURL(payment.PayRequest{
		OrderID:    orderID.String(),
		Amount:     amount,
		OrderInfo:  "Thanh toan don hang " + orderID.String(),
		IPAddr:     in.IPAddr,
		CreateDate: time.Now(),
	}), nil
}

func (s *service) PaymentCallback(ctx context.Context, orderID uuid.UUID, payDate time.Time, success bool) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PaymentCallback"),
		zap.String("order_id", orderID.String()),
		zap.Bool("success", success),
	)

	var (
		o              *Order
		alreadySettled bool
	)

	err := s.repo.RunInTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		o, err = s.repo.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrOrderNotFound
		}
		if o.Transaction == nil {
			return ErrNoTransaction
		}

		// Gateways retry callbacks. A settled ledger entry is final: no
		// second transition, no second notification.
		if o.Transaction.Status.Settled() {
			alreadySettled = true
			return nil
		}

		status := TransactionFailed
		if success {
			status = TransactionSuccess
		}
		if err := s.repo.UpdateTransactionStatus(ctx, tx, o.Transaction.ID, status, payDate); err != nil {
			return err
		}

		if success {
			if _, err := s.repo.UpdateOrderStatus(ctx, tx, orderID, StatusPreparing, StatusPending); err != nil {
				return err
			}
		}

		items, err := s.repo.ListItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		o.Items = items

		return nil
	})
	if err != nil {
		log.Error("failed to reconcile payment callback", zap.Error(err))
		return err
	}

	if alreadySettled {
		log.Info("duplicate payment callback ignored",
			zap.String("transaction_status", string(o.Transaction.Status)),
		)
		return nil
	}

	log.Info("payment callback reconciled")

	template := mail.TemplateOrderPaymentFailed
	subject := "Payment failed for order " + orderID.String()
	if success {
		template = mail.TemplateOrderPaid
		subject = "Payment received for order " + orderID.String()
	}

	s.notify(ctx, o, mail.Message{
		Subject:  subject,
		Template: template,
		Data: map[string]any{
			"CustomerName": o.CustomerName,
			"OrderID":      orderID.String(),
			"Items":        o.Items,
			"TotalCost":    o.TotalCost,
			"ShippingCost": o.ShippingCost,
			"DiscountCost": o.DiscountCost,
			"Amount":       o.Transaction.Amount,
		},
	})

	return nil
}

func (s *service) RequestCancel(ctx context.Context, orderID uuid.UUID, userID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RequestCancel"),
		zap.String("order_id", orderID.String()),
		zap.Uint("user_id", userID),
	)

	err := s.repo.RunInTransaction(ctx, func(tx *sql.Tx) error {
		o, err := s.repo.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrOrderNotFound
		}
		if o.UserID != userID {
			return ErrForbidden
		}
		if !o.Status.Cancelable() {
			return ErrCantCancel
		}

		_, err = s.repo.UpdateOrderStatus(ctx, tx, orderID, StatusCanceling, StatusPending, StatusPreparing)
		return err
	})
	if err != nil {
		log.Warn("cancel request refused", zap.Error(err))
		return err
	}

	log.Info("cancel requested, awaiting approval")
	return nil
}

func (s *service) ResolveCancel(ctx context.Context, orderID uuid.UUID, in ResolveCancelInput, ipAddr string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ResolveCancel"),
		zap.String("order_id", orderID.String()),
		zap.Bool("accept", in.Accept),
	)

	var (
		o            *Order
		wasCanceling bool
	)

	err := s.repo.RunInTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		o, err = s.repo.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrOrderNotFound
		}

		wasCanceling = o.Status == StatusCanceling

		// Re-validate here: the status may have moved since the request was
		// filed.
		if !o.Status.Cancelable() {
			return ErrCantCancel
		}

		if !in.Accept {
			// Rejection keeps whatever state the request left behind.
			return nil
		}

		ok, err := s.repo.UpdateOrderStatus(ctx, tx, orderID,
			StatusCanceled, StatusPending, StatusPreparing, StatusCanceling)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelFailed
		}

		return nil
	})
	if err != nil {
		log.Warn("failed to resolve cancellation", zap.Error(err))
		return err
	}

	refunded := false
	if in.Accept && o.Transaction != nil && o.Transaction.Status == TransactionSuccess {
		payDate := time.Now()
		if o.Transaction.PayDate != nil {
			payDate = *o.Transaction.PayDate
		}

		err := s.gateway.Refund(ctx, payment.RefundRequest{
			OrderID:         orderID.String(),
			Amount:          o.Transaction.Amount,
			TransactionDate: payDate,
			IPAddr:          ipAddr,
			CreateDate:      time.Now(),
		})
		if err != nil {
			log.Error("refund failed", zap.Error(err))
			return apperr.Wrap(err, "refund request failed")
		}
		refunded = true
	}

	log.Info("cancellation resolved",
		zap.Bool("was_canceling", wasCanceling),
		zap.Bool("refunded", refunded),
	)

	template := mail.TemplateCancelRejected
	subject := "Cancellation request for order " + orderID.String() + " was rejected"
	if in.Accept {
		template = mail.TemplateCancelApproved
		subject = "Order " + orderID.String() + " has been canceled"
		if wasCanceling {
			subject = "Cancellation request for order " + orderID.String() + " was approved"
		}
	}

	var amount int64
	if o.Transaction != nil {
		amount = o.Transaction.Amount
	}

	s.notify(ctx, o, mail.Message{
		Subject:  subject,
		Template: template,
		Data: map[string]any{
			"CustomerName": o.CustomerName,
			"OrderID":      orderID.String(),
			"Reason":       in.Reason,
			"Refunded":     refunded,
			"Amount":       amount,
		},
	})

	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, userID uint, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) resultURL(orderID uuid.UUID) string {
	return s.clientBaseURL + "/order/result?orderId=" + url.QueryEscape(orderID.String())
}

// notify dispatches a mail without blocking the caller. Failures are logged,
// never returned; the transaction outcome has already been decided.
func (s *service) notify(ctx context.Context, o *Order, msg mail.Message) {
	msg.To = o.CustomerEmail
	if msg.To == "" {
		if u, err := s.userRepo.FindByID(ctx, o.UserID); err == nil && u != nil {
			msg.To = u.Email
		}
	}
	if msg.To == "" {
		logger.FromCtx(ctx).Warn("skipping notification mail, no recipient",
			zap.String("order_id", o.ID.String()),
		)
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.mailer.Send(sendCtx, msg); err != nil {
			logger.L().Error("failed to send notification mail",
				zap.String("order_id", o.ID.String()),
				zap.String("template", msg.Template),
				zap.Error(err),
			)
		}
	}()
}
