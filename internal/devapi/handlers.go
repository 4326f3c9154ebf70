package devapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type reviewRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

type addCartRequest struct {
	ProductID string `json:"product_id"`
	Qty       *int   `json:"qty"`
}

type updateCartRequest struct {
	Qty *int `json:"qty"`
}

type syncCartRequest struct {
	Items []storefront.CartLine `json:"items"`
}

type applyCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// bindJSON decodes an optional JSON body. An empty body leaves target untouched.
func bindJSON(ctx *gin.Context, target any) bool {
	if err := ctx.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		respondError(ctx, rejected("expected JSON body"))
		return false
	}
	return true
}

func (server *Server) authenticated(ctx *gin.Context, user storefront.User, message string) {
	token, err := server.tokens.issue(user.ID, string(user.Role))
	if err != nil {
		server.logger.Error("token issue failed", zap.Error(err))
		respondError(ctx, err)
		return
	}
	respondOK(ctx, storefront.AuthResult{Token: token, User: user}, message)
}

func (server *Server) handleLogin(ctx *gin.Context) {
	var request loginRequest
	if !bindJSON(ctx, &request) {
		return
	}
	user, err := server.data.authenticate(request.Email, request.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	server.authenticated(ctx, user, "")
}

func (server *Server) handleRegister(ctx *gin.Context) {
	var request storefront.RegisterInput
	if !bindJSON(ctx, &request) {
		return
	}
	user, err := server.data.register(request)
	if err != nil {
		respondError(ctx, err)
		return
	}
	server.authenticated(ctx, user, "Account created")
}

func (server *Server) handleMe(ctx *gin.Context) {
	user, err := server.data.userByID(ctx.GetString(contextKeyUserID))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, user, "")
}

func (server *Server) handleUpdateProfile(ctx *gin.Context) {
	var request storefront.ProfileInput
	if !bindJSON(ctx, &request) {
		return
	}
	user, err := server.data.updateProfile(ctx.GetString(contextKeyUserID), request)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, user, "")
}

func (server *Server) handleChangePassword(ctx *gin.Context) {
	var request changePasswordRequest
	if !bindJSON(ctx, &request) {
		return
	}
	if err := server.data.changePassword(ctx.GetString(contextKeyUserID), request.OldPassword, request.NewPassword); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Password changed")
}

func (server *Server) handleListAddresses(ctx *gin.Context) {
	respondOK(ctx, server.data.listAddresses(ctx.GetString(contextKeyUserID)), "")
}

func (server *Server) handleAddAddress(ctx *gin.Context) {
	var request storefront.AddressInput
	if !bindJSON(ctx, &request) {
		return
	}
	address, err := server.data.addAddress(ctx.GetString(contextKeyUserID), request)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, address, "")
}

func (server *Server) handleDeleteAddress(ctx *gin.Context) {
	server.data.deleteAddress(ctx.GetString(contextKeyUserID), ctx.Param("id"))
	respondOK(ctx, nil, "Address deleted")
}

func (server *Server) handleDefaultAddress(ctx *gin.Context) {
	server.data.setDefaultAddress(ctx.GetString(contextKeyUserID), ctx.Param("id"))
	respondOK(ctx, nil, "Default address set")
}

func (server *Server) handleCategories(ctx *gin.Context) {
	respondOK(ctx, server.data.listCategories(), "")
}

func (server *Server) handleListProducts(ctx *gin.Context) {
	page, pageErr := optionalInt(ctx.Query("page"))
	perPage, perPageErr := optionalInt(ctx.Query("per_page"))
	if pageErr != nil || perPageErr != nil {
		respondError(ctx, rejected("page and per_page must be integers"))
		return
	}
	products, total, page, perPage := server.data.listProducts(productQuery{
		category: ctx.Query("category"),
		search:   ctx.Query("search"),
		sort:     ctx.Query("sort"),
		page:     page,
		perPage:  perPage,
	})
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  defaultSuccessMessage,
		"data":     products,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (server *Server) handleProduct(ctx *gin.Context) {
	product, err := server.data.productDetail(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, product, "")
}

func (server *Server) handleFeatured(ctx *gin.Context) {
	respondOK(ctx, server.data.featuredProducts(), "")
}

func (server *Server) handleTrending(ctx *gin.Context) {
	respondOK(ctx, server.data.trendingProducts(), "")
}

func (server *Server) handleAddReview(ctx *gin.Context) {
	var request reviewRequest
	if !bindJSON(ctx, &request) {
		return
	}
	rating := 5
	if request.Rating != nil {
		rating = *request.Rating
	}
	review, err := server.data.addReview(ctx.GetString(contextKeyUserID), ctx.Param("id"), rating, request.Comment)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, review, "")
}

func (server *Server) handleCart(ctx *gin.Context) {
	respondOK(ctx, server.data.cartSnapshot(ctx.GetString(contextKeyUserID)), "")
}

func (server *Server) handleAddToCart(ctx *gin.Context) {
	var request addCartRequest
	if !bindJSON(ctx, &request) {
		return
	}
	qty := 1
	if request.Qty != nil {
		qty = *request.Qty
	}
	if err := server.data.addToCart(ctx.GetString(contextKeyUserID), request.ProductID, qty); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Added to cart")
}

func (server *Server) handleUpdateCart(ctx *gin.Context) {
	var request updateCartRequest
	if !bindJSON(ctx, &request) {
		return
	}
	qty := 1
	if request.Qty != nil {
		qty = *request.Qty
	}
	if err := server.data.updateCartItem(ctx.GetString(contextKeyUserID), ctx.Param("id"), qty); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Updated")
}

func (server *Server) handleRemoveFromCart(ctx *gin.Context) {
	server.data.removeCartItem(ctx.GetString(contextKeyUserID), ctx.Param("id"))
	respondOK(ctx, nil, "Removed")
}

func (server *Server) handleClearCart(ctx *gin.Context) {
	server.data.clearCart(ctx.GetString(contextKeyUserID))
	respondOK(ctx, nil, "Cart cleared")
}

func (server *Server) handleSyncCart(ctx *gin.Context) {
	var request syncCartRequest
	if !bindJSON(ctx, &request) {
		return
	}
	server.data.syncCart(ctx.GetString(contextKeyUserID), request.Items)
	respondOK(ctx, nil, "Synced")
}

func (server *Server) handleWishlist(ctx *gin.Context) {
	respondOK(ctx, server.data.listWishlist(ctx.GetString(contextKeyUserID)), "")
}

func (server *Server) handleToggleWishlist(ctx *gin.Context) {
	wishlisted := server.data.toggleWishlist(ctx.GetString(contextKeyUserID), ctx.Param("id"))
	message := "Removed from wishlist"
	if wishlisted {
		message = "Added to wishlist"
	}
	respondOK(ctx, gin.H{"wishlisted": wishlisted}, message)
}

func (server *Server) handleApplyCoupon(ctx *gin.Context) {
	var request applyCouponRequest
	if !bindJSON(ctx, &request) {
		return
	}
	result, err := server.data.applyCoupon(request.Code, request.Subtotal)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, result, "Coupon applied! Save ₹"+result.Discount.String())
}

func (server *Server) handlePlaceOrder(ctx *gin.Context) {
	var request storefront.OrderInput
	if !bindJSON(ctx, &request) {
		return
	}
	order, err := server.data.placeOrder(ctx.GetString(contextKeyUserID), request)
	if err != nil {
		respondError(ctx, err)
		return
	}
	server.logger.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", order.UserID))
	respondOK(ctx, order, "Order placed successfully")
}

func (server *Server) handleListOrders(ctx *gin.Context) {
	respondOK(ctx, server.data.listOrders(ctx.GetString(contextKeyUserID)), "")
}

func (server *Server) handleOrder(ctx *gin.Context) {
	order, err := server.data.orderFor(ctx.Param("id"), ctx.GetString(contextKeyUserID), ctx.GetString(contextKeyRole))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, order, "")
}

func (server *Server) handleAdminStats(ctx *gin.Context) {
	respondOK(ctx, server.data.adminStats(), "")
}

func (server *Server) handleAdminUsers(ctx *gin.Context) {
	respondOK(ctx, server.data.adminUsers(), "")
}

func (server *Server) handleAdminProducts(ctx *gin.Context) {
	respondOK(ctx, server.data.adminProducts(), "")
}

func (server *Server) handleAdminAddProduct(ctx *gin.Context) {
	var request storefront.ProductInput
	if !bindJSON(ctx, &request) {
		return
	}
	product, err := server.data.addProduct(request)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, product, "")
}

func (server *Server) handleAdminUpdateProduct(ctx *gin.Context) {
	var request storefront.ProductInput
	if !bindJSON(ctx, &request) {
		return
	}
	product, err := server.data.updateProduct(ctx.Param("id"), request)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, product, "")
}

func (server *Server) handleAdminDeleteProduct(ctx *gin.Context) {
	server.data.deactivateProduct(ctx.Param("id"))
	respondOK(ctx, nil, "Product deactivated")
}

func (server *Server) handleAdminOrders(ctx *gin.Context) {
	respondOK(ctx, server.data.adminOrders(ctx.Query("status")), "")
}

func (server *Server) handleAdminOrderStatus(ctx *gin.Context) {
	var request orderStatusRequest
	if !bindJSON(ctx, &request) {
		return
	}
	status, err := server.data.updateOrderStatus(ctx.Param("id"), request.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Order status updated to "+status.String())
}
