package events

// Event names shared by models, views and the composition root.
const (
	CatalogUpdated = "catalog:updated"

	ProductOpen             = "product:open"
	ProductAddToBasket      = "product:addToBasket"
	ProductRemoveFromBasket = "product:removeFromBasket"

	BasketChanged   = "basket:changed"
	BasketOpened    = "basket:opened"
	BasketMakeOrder = "basket:makeOrder"

	OrderOpened = "orderInBasket:opened"

	DeliveryChange        = "deliveryOrder:change"
	DeliveryNext          = "deliveryOrder:nextForm"
	DeliveryErrorsChanged = "formErrors.delivery:changed"
	DeliveryOK            = "order.delivery:ok"

	ContactsChange        = "contactsOrder:change"
	ContactsSubmit        = "deliveryContacts:nextPayment"
	ContactsErrorsChanged = "formErrors.contacts:changed"
	ContactsOK            = "order.contacts:ok"

	ModalOpen  = "modal:open"
	ModalClose = "modal:close"
)
