package domain

var ErrFoodItemNotFound = newKindError(ErrNotFound, "food item not found")
