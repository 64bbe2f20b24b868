package i18n

// messages 接口错误文案表
var messages = map[string]map[string]string{
	"az-AZ": {
		"error.bad_request":                 "Sorğu düzgün deyil",
		"error.unauthorized":                "Giriş tələb olunur",
		"error.forbidden":                   "İcazə yoxdur",
		"error.not_found":                   "Tapılmadı",
		"error.internal":                    "Daxili xəta baş verdi",
		"error.fetch_failed":                "Məlumat alına bilmədi",
		"error.create_failed":               "Yaradıla bilmədi",
		"error.update_failed":               "Yenilənə bilmədi",
		"error.delete_failed":               "Silinə bilmədi",
		"error.auth_header_missing":         "Authorization başlığı yoxdur",
		"error.auth_header_invalid":         "Authorization başlığı düzgün deyil",
		"error.token_invalid":               "Token etibarsızdır",
		"error.token_revoked":               "Token ləğv edilib",
		"error.jwt_secret_missing":          "Server düzgün konfiqurasiya olunmayıb",
		"error.user_disabled":               "Hesab bloklanıb",
		"error.user_id_invalid":             "İstifadəçi ID düzgün deyil",
		"error.user_id_type_invalid":        "İstifadəçi ID tipi düzgün deyil",
		"error.email_invalid":               "E-poçt düzgün deyil",
		"error.email_exists":                "Bu e-poçt artıq qeydiyyatdan keçib",
		"error.username_exists":             "Bu istifadəçi adı artıq mövcuddur",
		"error.password_too_short":          "Şifrə çox qısadır",
		"error.invalid_credentials":         "E-poçt və ya şifrə yanlışdır",
		"error.not_owner":                   "Bu əməliyyat üçün icazəniz yoxdur",
		"error.listing_not_found":           "Elan tapılmadı",
		"error.store_not_found":             "Mağaza tapılmadı",
		"error.store_plan_not_found":        "Mağaza tarifi tapılmadı",
		"error.store_archived":              "Mağaza arxivləşdirilib",
		"error.store_not_active":            "Mağaza aktiv deyil",
		"error.store_already_active":        "Mağaza onsuz da aktivdir",
		"error.store_quota_exceeded":        "Mağazanın elan limiti dolub",
		"error.store_limit_reached":         "Mağaza sayı limitinə çatmısınız",
		"error.store_has_listings":          "Mağazada aktiv elanlar var",
		"error.discount_not_found":          "Endirim tapılmadı",
		"error.campaign_not_found":          "Kampaniya tapılmadı",
		"error.wallet_insufficient_balance": "Balans kifayət etmir",
		"error.wallet_amount_invalid":       "Məbləğ düzgün deyil",
		"error.purchase_not_confirmed":      "Ödənişli əməliyyat təsdiq edilməyib",
		"error.purchase_in_flight":          "Əvvəlki alış hələ icra olunur",
		"error.purchase_kind_invalid":       "Alış növü düzgün deyil",
		"error.recharge_not_found":          "Balans artırma sifarişi tapılmadı",
		"error.recharge_closed":             "Balans artırma sifarişi bağlanıb",
		"error.gateway_disabled":            "Onlayn ödəniş aktiv deyil",
		"error.rate_limited":                "Çox sayda cəhd, %d saniyə sonra yenidən yoxlayın",
		"error.login_too_many":              "Çox sayda giriş cəhdi, %d saniyə sonra yenidən yoxlayın",
		"error.rate_limit_unavailable":      "Xidmət müvəqqəti əlçatmazdır",
	},
	"ru-RU": {
		"error.bad_request":                 "Некорректный запрос",
		"error.unauthorized":                "Требуется авторизация",
		"error.forbidden":                   "Доступ запрещён",
		"error.not_found":                   "Не найдено",
		"error.internal":                    "Внутренняя ошибка",
		"error.fetch_failed":                "Не удалось получить данные",
		"error.create_failed":               "Не удалось создать",
		"error.update_failed":               "Не удалось обновить",
		"error.delete_failed":               "Не удалось удалить",
		"error.auth_header_missing":         "Отсутствует заголовок Authorization",
		"error.auth_header_invalid":         "Некорректный заголовок Authorization",
		"error.token_invalid":               "Недействительный токен",
		"error.token_revoked":               "Токен отозван",
		"error.jwt_secret_missing":          "Сервер настроен некорректно",
		"error.user_disabled":               "Аккаунт заблокирован",
		"error.user_id_invalid":             "Некорректный ID пользователя",
		"error.user_id_type_invalid":        "Некорректный тип ID пользователя",
		"error.email_invalid":               "Некорректный e-mail",
		"error.email_exists":                "E-mail уже зарегистрирован",
		"error.username_exists":             "Имя пользователя занято",
		"error.password_too_short":          "Слишком короткий пароль",
		"error.invalid_credentials":         "Неверный e-mail или пароль",
		"error.not_owner":                   "Нет прав на эту операцию",
		"error.listing_not_found":           "Объявление не найдено",
		"error.store_not_found":             "Магазин не найден",
		"error.store_plan_not_found":        "Тариф магазина не найден",
		"error.store_archived":              "Магазин в архиве",
		"error.store_not_active":            "Магазин не активен",
		"error.store_already_active":        "Магазин уже активен",
		"error.store_quota_exceeded":        "Лимит объявлений магазина исчерпан",
		"error.store_limit_reached":         "Достигнут лимит магазинов",
		"error.store_has_listings":          "В магазине есть активные объявления",
		"error.discount_not_found":          "Скидка не найдена",
		"error.campaign_not_found":          "Кампания не найдена",
		"error.wallet_insufficient_balance": "Недостаточно средств",
		"error.wallet_amount_invalid":       "Некорректная сумма",
		"error.purchase_not_confirmed":      "Платная операция не подтверждена",
		"error.purchase_in_flight":          "Предыдущая покупка ещё выполняется",
		"error.purchase_kind_invalid":       "Некорректный тип покупки",
		"error.recharge_not_found":          "Заявка на пополнение не найдена",
		"error.recharge_closed":             "Заявка на пополнение закрыта",
		"error.gateway_disabled":            "Онлайн-оплата отключена",
		"error.rate_limited":                "Слишком много попыток, повторите через %d сек.",
		"error.login_too_many":              "Слишком много попыток входа, повторите через %d сек.",
		"error.rate_limit_unavailable":      "Сервис временно недоступен",
	},
	"en-US": {
		"error.bad_request":                 "Bad request",
		"error.unauthorized":                "Authentication required",
		"error.forbidden":                   "Forbidden",
		"error.not_found":                   "Not found",
		"error.internal":                    "Internal error",
		"error.fetch_failed":                "Failed to fetch data",
		"error.create_failed":               "Failed to create",
		"error.update_failed":               "Failed to update",
		"error.delete_failed":               "Failed to delete",
		"error.auth_header_missing":         "Authorization header missing",
		"error.auth_header_invalid":         "Authorization header invalid",
		"error.token_invalid":               "Invalid token",
		"error.token_revoked":               "Token revoked",
		"error.jwt_secret_missing":          "Server misconfigured",
		"error.user_disabled":               "Account disabled",
		"error.user_id_invalid":             "Invalid user id",
		"error.user_id_type_invalid":        "Invalid user id type",
		"error.email_invalid":               "Invalid email",
		"error.email_exists":                "Email already registered",
		"error.username_exists":             "Username already taken",
		"error.password_too_short":          "Password too short",
		"error.invalid_credentials":         "Invalid email or password",
		"error.not_owner":                   "Not allowed for this resource",
		"error.listing_not_found":           "Listing not found",
		"error.store_not_found":             "Store not found",
		"error.store_plan_not_found":        "Store plan not found",
		"error.store_archived":              "Store archived",
		"error.store_not_active":            "Store not active",
		"error.store_already_active":        "Store already active",
		"error.store_quota_exceeded":        "Store ad quota exceeded",
		"error.store_limit_reached":         "Store limit reached",
		"error.store_has_listings":          "Store still has active listings",
		"error.discount_not_found":          "Discount not found",
		"error.campaign_not_found":          "Campaign not found",
		"error.wallet_insufficient_balance": "Insufficient balance",
		"error.wallet_amount_invalid":       "Invalid amount",
		"error.purchase_not_confirmed":      "Paid action not confirmed",
		"error.purchase_in_flight":          "Previous purchase still processing",
		"error.purchase_kind_invalid":       "Invalid purchase kind",
		"error.recharge_not_found":          "Recharge order not found",
		"error.recharge_closed":             "Recharge order closed",
		"error.gateway_disabled":            "Online payment disabled",
		"error.rate_limited":                "Too many attempts, retry in %d seconds",
		"error.login_too_many":              "Too many login attempts, retry in %d seconds",
		"error.rate_limit_unavailable":      "Service temporarily unavailable",
	},
}
