package config

const defaultWelcome = "Welcome! I'm your automated trading bot for Gems and TF2 Keys. " +
	"I also buy and sell Emotes/Backgrounds for Gems. Type !help to see all commands and rates."

const defaultHelp = `Commands:

!Prices ⮞ Displays all current buy/sell prices.

!Check ⮞ Checks your current inventory for tradeable items.

!BuyTF [# of TF2 Keys] ⮞ Buy TF2 Keys for Gems

!SellTF [# of TF2 Keys] ⮞ Sell TF2 Keys for Gems

We're also:
Buying Your Backgrounds & Emotes!
(For current rates, please use !Prices)
(Only Gemmable Backgrounds and Emotes)
Just start a Trade Offer with me and enter any/ all Emoticons/Backgrounds you would like to sell! Then, Add the correct rate of gems from my inventory into the trade. I will auto accept if the rates match/will decline if they do not.`

const defaultAdminHelp = `Admin Commands:

!Admin ⮞ Displays this admin help menu.
!Profit ⮞ Shows current stock statistics (Keys, Gems).
!Block [SteamID64] ⮞ Blocks a specific user from interacting with the bot.
!Unblock [SteamID64] ⮞ Unblocks a previously blocked user.
!Broadcast [Message] ⮞ Sends the configured message to all friends of the bot.`

const defaultInfo = "Bot owned by https://steamcommunity.com/id/klb777\n1 Use !help to see all Commands"
